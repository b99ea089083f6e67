package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// PortfolioService serves the public resume pages.
type PortfolioService struct {
	profiles repositories.ProfileRepository
	projects repositories.ProjectRepository
}

// NewPortfolioService creates a PortfolioService
func NewPortfolioService(profiles repositories.ProfileRepository, projects repositories.ProjectRepository) *PortfolioService {
	return &PortfolioService{profiles: profiles, projects: projects}
}

// GetBySlug returns a profile and its public projects. Unknown slugs and
// banned profiles are not found.
func (s *PortfolioService) GetBySlug(ctx context.Context, slug string) (*models.Portfolio, error) {
	profile, err := s.profiles.GetProfileBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, notFoundOr(err, "failed to load portfolio")
	}
	if profile.Role == models.RoleBanned {
		return nil, ErrNotFound
	}
	projects, err := s.projects.GetProjectsByOwner(ctx, profile.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	profile.Email = ""
	return &models.Portfolio{Profile: *profile, Projects: projects}, nil
}
