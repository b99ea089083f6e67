package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository defines the interface for marketplace project operations
type ProjectRepository interface {
	GetProjectByID(ctx context.Context, id uint) (*models.Project, error)
	GetPublicProjects(ctx context.Context, offset, limit int) ([]models.Project, error)
	GetProjectsByOwner(ctx context.Context, ownerID string, publicOnly bool) ([]models.Project, error)
	UpdateProjectStatus(ctx context.Context, id uint, status models.ProjectStatus) error
	DeleteProject(ctx context.Context, id uint) error
}

// PostgresProjectRepository implements ProjectRepository for PostgreSQL.
// Inserts go through QuotaRepository.CreateWithinQuota.
type PostgresProjectRepository struct {
	db *gorm.DB
}

// NewPostgresProjectRepository creates a new PostgresProjectRepository
func NewPostgresProjectRepository(db *gorm.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

// GetProjectByID retrieves a project by ID
func (r *PostgresProjectRepository) GetProjectByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

// GetPublicProjects lists public projects, newest first
func (r *PostgresProjectRepository) GetPublicProjects(ctx context.Context, offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&projects).Error
	return projects, err
}

// GetProjectsByOwner lists an owner's projects
func (r *PostgresProjectRepository) GetProjectsByOwner(ctx context.Context, ownerID string, publicOnly bool) ([]models.Project, error) {
	var projects []models.Project
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	err := q.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// UpdateProjectStatus changes a project's status
func (r *PostgresProjectRepository) UpdateProjectStatus(ctx context.Context, id uint, status models.ProjectStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject deletes a project; interests cascade.
func (r *PostgresProjectRepository) DeleteProject(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
