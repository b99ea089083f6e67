package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// AvatarUploader stores avatar images and returns their public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, userID, contentType string, r io.Reader) (string, error)
}

// ProfileService manages a user's own profile.
type ProfileService struct {
	profiles   repositories.ProfileRepository
	identities *IdentityResolver
	avatars    AvatarUploader
}

// NewProfileService creates a ProfileService. avatars may be nil when object
// storage is not configured.
func NewProfileService(profiles repositories.ProfileRepository, identities *IdentityResolver, avatars AvatarUploader) *ProfileService {
	return &ProfileService{profiles: profiles, identities: identities, avatars: avatars}
}

// EnsureProfile returns userID's profile, creating a pending one on first login.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile = &models.Profile{ID: userID, Email: email, Role: models.RolePending}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return s.profiles.GetProfileByID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// CompleteProfile finishes sign-up by choosing a name and a role. It can only
// be done once.
func (s *ProfileService) CompleteProfile(ctx context.Context, userID, email string, req *models.CompleteProfileRequest) (*models.Profile, error) {
	profile, err := s.EnsureProfile(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	if profile.Role != models.RolePending {
		return nil, ErrAlreadyExists
	}

	fields := map[string]interface{}{"full_name": strings.TrimSpace(req.FullName), "role": req.Role}
	if err := s.profiles.UpdateProfile(ctx, userID, fields); err != nil {
		return nil, notFoundOr(err, "failed to complete profile")
	}
	s.identities.Invalidate(ctx, userID)
	return s.GetProfile(ctx, userID)
}

// GetProfile returns any user's profile.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "failed to load profile")
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of req to userID's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	fields := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}
	set("full_name", req.FullName)
	set("bio", req.Bio)
	set("location", req.Location)
	set("specialties", req.Specialties)
	set("availability_status", req.AvailabilityStatus)
	set("github_url", req.GithubURL)
	set("linkedin_url", req.LinkedinURL)
	set("website_url", req.WebsiteURL)
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if slug == "" {
			fields["slug"] = nil
		} else {
			fields["slug"] = slug
		}
	}

	if err := s.profiles.UpdateProfile(ctx, userID, fields); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, notFoundOr(err, "failed to update profile")
	}
	s.identities.Invalidate(ctx, userID)
	return s.GetProfile(ctx, userID)
}

// SearchProfiles finds profiles by name, email or specialty.
func (s *ProfileService) SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	if strings.TrimSpace(query) == "" {
		return []models.Profile{}, nil
	}
	profiles, err := s.profiles.SearchProfiles(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, nil
}

// UploadAvatar stores a new avatar and points the profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (string, error) {
	if s.avatars == nil {
		return "", errors.New("avatar storage is not configured")
	}
	url, err := s.avatars.Upload(ctx, userID, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.profiles.UpdateProfile(ctx, userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", notFoundOr(err, "failed to save avatar")
	}
	s.identities.Invalidate(ctx, userID)
	return url, nil
}
