package repositories

import (
	"context"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	GetProfileBySlug(ctx context.Context, slug string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error
	SetRole(ctx context.Context, id string, role models.Role) error
	SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error)
	ListProfiles(ctx context.Context, offset, limit int) ([]models.Profile, int64, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// CreateProfile inserts a profile. An existing row with the same id is a
// duplicate.
func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Create(profile).Error)
}

// GetProfileByID retrieves a profile by its auth id
func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// GetProfilesByIDs returns the profiles that exist among ids, in no particular order.
func (r *PostgresProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	var profiles []models.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfileBySlug retrieves a profile by its public portfolio slug
func (r *PostgresProfileRepository) GetProfileBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// UpdateProfile applies a partial update.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes a profile's role
func (r *PostgresProfileRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	return r.UpdateProfile(ctx, id, map[string]interface{}{"role": role})
}

// SearchProfiles matches name, email or specialties, case-insensitively.
func (r *PostgresProfileRepository) SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("role <> ?", models.RoleBanned).
		Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(specialties) LIKE ?", pattern, pattern, pattern).
		Order("full_name ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListProfiles pages through all profiles, newest first.
func (r *PostgresProfileRepository) ListProfiles(ctx context.Context, offset, limit int) ([]models.Profile, int64, error) {
	var profiles []models.Profile
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&profiles).Error
	return profiles, total, err
}
