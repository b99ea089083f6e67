package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// ProjectService manages marketplace projects and the interests they receive.
type ProjectService struct {
	projects       repositories.ProjectRepository
	interests      repositories.InterestRepository
	profiles       repositories.ProfileRepository
	limiter        *RateLimiter
	identities     *IdentityResolver
	notifier       Notifier
	projectsPerDay int
}

// NewProjectService creates a ProjectService
func NewProjectService(
	projects repositories.ProjectRepository,
	interests repositories.InterestRepository,
	profiles repositories.ProfileRepository,
	limiter *RateLimiter,
	identities *IdentityResolver,
	notifier Notifier,
	projectsPerDay int,
) *ProjectService {
	return &ProjectService{
		projects:       projects,
		interests:      interests,
		profiles:       profiles,
		limiter:        limiter,
		identities:     identities,
		notifier:       notifier,
		projectsPerDay: projectsPerDay,
	}
}

// ProjectQuota reports the owner's remaining daily launches.
func (s *ProjectService) ProjectQuota(ctx context.Context, ownerID string) (Decision, error) {
	return s.limiter.CheckAndCount(ctx, ownerID, repositories.QuotaProjects, s.projectsPerDay)
}

// CreateProject launches a project within the owner's daily quota.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, req *models.CreateProjectRequest) (*models.Project, error) {
	if _, err := activeProfile(ctx, s.profiles, ownerID); err != nil {
		return nil, err
	}
	project := &models.Project{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Stack:       strings.TrimSpace(req.Stack),
		Budget:      strings.TrimSpace(req.Budget),
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		Status:      models.ProjectOpen,
		CreatedAt:   s.limiter.Now(),
	}
	if _, err := s.limiter.Create(ctx, ownerID, repositories.QuotaProjects, s.projectsPerDay, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns a page of public projects with their owners.
func (s *ProjectService) ListProjects(ctx context.Context, page, limit int) ([]models.ProjectView, error) {
	page, limit = normalizePage(page, limit)
	projects, err := s.projects.GetPublicProjects(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return s.views(ctx, projects)
}

// MyProjects lists every project owned by ownerID, public or not.
func (s *ProjectService) MyProjects(ctx context.Context, ownerID string) ([]models.ProjectView, error) {
	projects, err := s.projects.GetProjectsByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return s.views(ctx, projects)
}

// GetProject returns a project. Private projects are visible to their owner only.
func (s *ProjectService) GetProject(ctx context.Context, viewer string, id uint) (*models.ProjectView, error) {
	project, err := s.visible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []models.Project{*project})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateStatus lets the owner move a project between open, in progress and closed.
func (s *ProjectService) UpdateStatus(ctx context.Context, actorID string, id uint, status models.ProjectStatus) error {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "failed to load project")
	}
	if project.OwnerID != actorID {
		return ErrForbidden
	}
	if err := s.projects.UpdateProjectStatus(ctx, id, status); err != nil {
		return notFoundOr(err, "failed to update project")
	}
	return nil
}

// DeleteProject removes a project. Owners delete their own; staff delete any.
func (s *ProjectService) DeleteProject(ctx context.Context, actorID string, id uint) error {
	actor, err := activeProfile(ctx, s.profiles, actorID)
	if err != nil {
		return err
	}
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "failed to load project")
	}
	if !canModerate(actor, project.OwnerID) {
		return ErrForbidden
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return notFoundOr(err, "failed to delete project")
	}
	return nil
}

// ExpressInterest records that userID wants to join a project and notifies
// the owner. The notification is derived from the stored interest.
func (s *ProjectService) ExpressInterest(ctx context.Context, userID string, projectID uint, req *models.ExpressInterestRequest) (*models.ProjectInterest, error) {
	if _, err := activeProfile(ctx, s.profiles, userID); err != nil {
		return nil, err
	}
	project, err := s.visible(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID == userID {
		return nil, ErrSelfInterest
	}

	interest := &models.ProjectInterest{ProjectID: projectID, UserID: userID, Message: strings.TrimSpace(req.Message)}
	if err := s.interests.CreateInterest(ctx, interest); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to record interest: %w", err)
	}

	notifyBestEffort(ctx, s.notifier, NewNotification{
		UserID:     project.OwnerID,
		Kind:       models.KindInterest,
		Content:    "Someone is interested in " + project.Title,
		FromUserID: userID,
		Link:       "/projects/" + strconv.FormatUint(uint64(projectID), 10),
		Metadata:   map[string]interface{}{"project_id": projectID, "interest_id": interest.ID},
	})
	return interest, nil
}

// ListInterests returns the interests on a project. Owner only.
func (s *ProjectService) ListInterests(ctx context.Context, actorID string, projectID uint) ([]models.InterestView, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(err, "failed to load project")
	}
	if project.OwnerID != actorID {
		return nil, ErrForbidden
	}
	interests, err := s.interests.GetInterestsByProject(ctx, projectID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return s.interestViews(ctx, interests)
}

// DecideInterest accepts or declines an interest. Owner only. Accepted
// interests become partners.
func (s *ProjectService) DecideInterest(ctx context.Context, actorID string, interestID uint, status models.InterestStatus) (*models.ProjectInterest, error) {
	interest, err := s.interests.GetInterestByID(ctx, interestID)
	if err != nil {
		return nil, notFoundOr(err, "failed to load interest")
	}
	project, err := s.projects.GetProjectByID(ctx, interest.ProjectID)
	if err != nil {
		return nil, notFoundOr(err, "failed to load project")
	}
	if project.OwnerID != actorID {
		return nil, ErrForbidden
	}
	if interest.Status == status {
		return interest, nil
	}
	if err := s.interests.UpdateInterestStatus(ctx, interestID, status); err != nil {
		return nil, notFoundOr(err, "failed to update interest")
	}
	interest.Status = status
	return interest, nil
}

// Partners returns the users whose interest in the project was accepted.
func (s *ProjectService) Partners(ctx context.Context, viewer string, projectID uint) ([]models.Identity, error) {
	if _, err := s.visible(ctx, viewer, projectID); err != nil {
		return nil, err
	}
	interests, err := s.interests.GetInterestsByProject(ctx, projectID, models.InterestAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	ids := make([]string, len(interests))
	for i := range interests {
		ids[i] = interests[i].UserID
	}
	found, err := s.identities.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve partners: %w", err)
	}
	partners := make([]models.Identity, len(ids))
	for i, id := range ids {
		partners[i] = withIdentity(found, id)
	}
	return partners, nil
}

// MyInterests lists the interests userID expressed.
func (s *ProjectService) MyInterests(ctx context.Context, userID string) ([]models.ProjectInterest, error) {
	interests, err := s.interests.GetInterestsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return interests, nil
}

func (s *ProjectService) visible(ctx context.Context, viewer string, id uint) (*models.Project, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "failed to load project")
	}
	if !project.IsPublic && project.OwnerID != viewer {
		return nil, ErrNotFound
	}
	return project, nil
}

func (s *ProjectService) views(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	owners := make([]string, len(projects))
	for i := range projects {
		owners[i] = projects[i].OwnerID
	}
	found, err := s.identities.Resolve(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owners: %w", err)
	}
	views := make([]models.ProjectView, len(projects))
	for i := range projects {
		views[i] = models.ProjectView{Project: projects[i], Owner: withIdentity(found, projects[i].OwnerID)}
	}
	return views, nil
}

func (s *ProjectService) interestViews(ctx context.Context, interests []models.ProjectInterest) ([]models.InterestView, error) {
	users := make([]string, len(interests))
	for i := range interests {
		users[i] = interests[i].UserID
	}
	found, err := s.identities.Resolve(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	views := make([]models.InterestView, len(interests))
	for i := range interests {
		views[i] = models.InterestView{ProjectInterest: interests[i], User: withIdentity(found, interests[i].UserID)}
	}
	return views, nil
}
