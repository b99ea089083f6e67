package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for post comment operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error)
	CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	DeleteComment(ctx context.Context, id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error)
}

// GetCommentByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves the comments of a post, oldest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}

// CountByPostIDs returns the number of comments per post in one grouped query.
func (r *PostgresCommentRepository) CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return groupedCount(ctx, r.db, &models.Comment{}, "post_id", postIDs)
}

// DeleteComment deletes a comment
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type idCount struct {
	ID    uint
	Count int64
}

// groupedCount counts rows of model per value of column among ids.
func groupedCount(ctx context.Context, db *gorm.DB, model interface{}, column string, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []idCount
	err := db.WithContext(ctx).
		Model(model).
		Select(column+" AS id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

// likedSet returns which of ids userID has a row for in model.
func likedSet(ctx context.Context, db *gorm.DB, model interface{}, column, userID string, ids []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(ids) == 0 || userID == "" {
		return liked, nil
	}
	var found []uint
	err := db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Pluck(column, &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		liked[id] = true
	}
	return liked, nil
}
