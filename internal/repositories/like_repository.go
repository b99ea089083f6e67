package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for post like operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID uint, userID string) (bool, error)
	CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, userID string, postIDs []uint) (map[uint]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a like. A second like by the same user is ErrDuplicate.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	return translate(r.db.WithContext(ctx).Create(like).Error)
}

// DeleteLike removes the user's like and reports whether one existed
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID uint, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByPostIDs returns the number of likes per post
func (r *PostgresLikeRepository) CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return groupedCount(ctx, r.db, &models.Like{}, "post_id", postIDs)
}

// LikedPostIDs returns which posts userID has liked
func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []uint) (map[uint]bool, error) {
	return likedSet(ctx, r.db, &models.Like{}, "post_id", userID, postIDs)
}
