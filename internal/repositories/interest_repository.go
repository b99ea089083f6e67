package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// InterestRepository defines the interface for project interest operations
type InterestRepository interface {
	CreateInterest(ctx context.Context, interest *models.ProjectInterest) error
	GetInterestByID(ctx context.Context, id uint) (*models.ProjectInterest, error)
	GetInterestsByProject(ctx context.Context, projectID uint, status models.InterestStatus) ([]models.ProjectInterest, error)
	GetInterestsByUser(ctx context.Context, userID string) ([]models.ProjectInterest, error)
	UpdateInterestStatus(ctx context.Context, id uint, status models.InterestStatus) error
}

// PostgresInterestRepository implements InterestRepository for PostgreSQL
type PostgresInterestRepository struct {
	db *gorm.DB
}

// NewPostgresInterestRepository creates a new PostgresInterestRepository
func NewPostgresInterestRepository(db *gorm.DB) *PostgresInterestRepository {
	return &PostgresInterestRepository{db: db}
}

// CreateInterest records an interest. One per (project, user).
func (r *PostgresInterestRepository) CreateInterest(ctx context.Context, interest *models.ProjectInterest) error {
	interest.Status = models.InterestPending
	return translate(r.db.WithContext(ctx).Create(interest).Error)
}

// GetInterestByID retrieves an interest by ID
func (r *PostgresInterestRepository) GetInterestByID(ctx context.Context, id uint) (*models.ProjectInterest, error) {
	var interest models.ProjectInterest
	if err := r.db.WithContext(ctx).First(&interest, id).Error; err != nil {
		return nil, translate(err)
	}
	return &interest, nil
}

// GetInterestsByProject lists the interests on a project. An empty status
// returns all of them.
func (r *PostgresInterestRepository) GetInterestsByProject(ctx context.Context, projectID uint, status models.InterestStatus) ([]models.ProjectInterest, error) {
	var interests []models.ProjectInterest
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at ASC").Find(&interests).Error
	return interests, err
}

// GetInterestsByUser lists the interests a user expressed
func (r *PostgresInterestRepository) GetInterestsByUser(ctx context.Context, userID string) ([]models.ProjectInterest, error) {
	var interests []models.ProjectInterest
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&interests).Error
	return interests, err
}

// UpdateInterestStatus records the owner's decision
func (r *PostgresInterestRepository) UpdateInterestStatus(ctx context.Context, id uint, status models.InterestStatus) error {
	res := r.db.WithContext(ctx).Model(&models.ProjectInterest{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
