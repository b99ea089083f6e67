package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// PostOrder is the ordering of a post listing.
type PostOrder string

const (
	PostOrderRecent   PostOrder = "recent"
	PostOrderLikes    PostOrder = "likes"
	PostOrderComments PostOrder = "comments"
)

// postOrderClauses rank posts by their grouped counts before paging. Ties
// fall back to newest first.
var postOrderClauses = map[PostOrder]string{
	PostOrderLikes:    "(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) DESC",
	PostOrderComments: "(SELECT COUNT(*) FROM post_comments WHERE post_comments.post_id = posts.id) DESC",
}

// PostRepository defines the interface for forum post operations
type PostRepository interface {
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPosts(ctx context.Context, tag string, order PostOrder, offset, limit int) ([]models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID string, offset, limit int) ([]models.Post, error)
	DeletePost(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL. Inserts go
// through QuotaRepository.CreateWithinQuota.
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// GetPostByID retrieves a post by ID
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// GetPosts lists a page of posts in the given order, optionally filtered by
// tag. Unknown orders list newest first.
func (r *PostgresPostRepository) GetPosts(ctx context.Context, tag string, order PostOrder, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if tag != "" {
		q = q.Where("posts.tags ILIKE ?", "%"+tag+"%")
	}
	if rank, ok := postOrderClauses[order]; ok {
		q = q.Order(rank)
	}
	q = q.Order("posts.created_at DESC").Order("posts.id DESC")
	if err := q.Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostsByAuthor lists one author's posts newest first
func (r *PostgresPostRepository) GetPostsByAuthor(ctx context.Context, authorID string, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post; comments and likes cascade.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
