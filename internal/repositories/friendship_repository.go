package repositories

import (
	"context"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	GetOpenRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error)
	GetPendingIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error)
	GetPendingOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	GetAcceptedFor(ctx context.Context, userID string) ([]models.FriendRequest, error)
	UpdateFriendRequestStatus(ctx context.Context, id uint, from, to models.FriendRequestStatus) (bool, error)
	DeleteFriendRequest(ctx context.Context, id uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// CreateFriendRequest inserts a pending edge. The partial unique index on the
// canonical pair turns a concurrent duplicate into ErrDuplicate.
func (r *PostgresFriendshipRepository) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	req.Status = models.FriendRequestPending
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

// GetFriendRequestByID retrieves a friend request by ID
func (r *PostgresFriendshipRepository) GetFriendRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// GetOpenRequestBetween returns the pending or accepted edge linking a and b in
// either direction.
func (r *PostgresFriendshipRepository) GetOpenRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	low, high := models.CanonicalPair(a, b)
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ? AND status <> ?", low, high, models.FriendRequestRejected).
		Order("id DESC").
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// GetPendingIncoming lists pending requests addressed to userID, newest first.
func (r *PostgresFriendshipRepository) GetPendingIncoming(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// GetPendingOutgoing lists pending requests sent by userID.
func (r *PostgresFriendshipRepository) GetPendingOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// GetAcceptedFor lists accepted edges touching userID in either direction.
func (r *PostgresFriendshipRepository) GetAcceptedFor(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("(from_id = ? OR to_id = ?) AND status = ?", userID, userID, models.FriendRequestAccepted).
		Find(&requests).Error
	return requests, err
}

// UpdateFriendRequestStatus moves a request from one status to another. It
// reports false when the row was no longer in the expected state.
func (r *PostgresFriendshipRepository) UpdateFriendRequestStatus(ctx context.Context, id uint, from, to models.FriendRequestStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeleteFriendRequest deletes a friend request
func (r *PostgresFriendshipRepository) DeleteFriendRequest(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.FriendRequest{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
