package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// CommentLikeRepository defines the interface for comment like operations
type CommentLikeRepository interface {
	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	DeleteCommentLike(ctx context.Context, commentID uint, userID string) (bool, error)
	CountByCommentIDs(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	LikedCommentIDs(ctx context.Context, userID string, commentIDs []uint) (map[uint]bool, error)
}

// PostgresCommentLikeRepository implements CommentLikeRepository for PostgreSQL
type PostgresCommentLikeRepository struct {
	db *gorm.DB
}

// NewPostgresCommentLikeRepository creates a new PostgresCommentLikeRepository
func NewPostgresCommentLikeRepository(db *gorm.DB) *PostgresCommentLikeRepository {
	return &PostgresCommentLikeRepository{db: db}
}

// CreateCommentLike creates a like on a comment
func (r *PostgresCommentLikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return translate(r.db.WithContext(ctx).Create(like).Error)
}

// DeleteCommentLike removes the user's like and reports whether one existed
func (r *PostgresCommentLikeRepository) DeleteCommentLike(ctx context.Context, commentID uint, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByCommentIDs returns the number of likes per comment
func (r *PostgresCommentLikeRepository) CountByCommentIDs(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	return groupedCount(ctx, r.db, &models.CommentLike{}, "comment_id", commentIDs)
}

// LikedCommentIDs returns which comments userID has liked
func (r *PostgresCommentLikeRepository) LikedCommentIDs(ctx context.Context, userID string, commentIDs []uint) (map[uint]bool, error) {
	return likedSet(ctx, r.db, &models.CommentLike{}, "comment_id", userID, commentIDs)
}
