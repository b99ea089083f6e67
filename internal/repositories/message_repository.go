package repositories

import (
	"context"
	"time"

	"github.com/yopdevs/platform/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message operations
type MessageRepository interface {
	CreateIfFriends(ctx context.Context, msg *models.Message) error
	GetConversation(ctx context.Context, a, b string, before uint, limit int) ([]models.Message, error)
	GetLatestPerPeer(ctx context.Context, userID string) ([]models.Message, error)
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

const insertMessageIfFriends = `
INSERT INTO messages (sender_id, receiver_id, content, created_at)
SELECT ?, ?, ?, ?
WHERE EXISTS (
	SELECT 1 FROM friend_requests
	WHERE pair_low = ? AND pair_high = ? AND status = ?
)
RETURNING id`

// CreateIfFriends inserts msg only while an accepted friendship links sender
// and receiver, so an unfriend racing with a send cannot slip a message in.
func (r *PostgresMessageRepository) CreateIfFriends(ctx context.Context, msg *models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	var ids []uint
	if err := insertIfFriends(r.db.WithContext(ctx), msg).Scan(&ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFriends
	}
	msg.ID = ids[0]
	return nil
}

func insertIfFriends(db *gorm.DB, msg *models.Message) *gorm.DB {
	low, high := models.CanonicalPair(msg.SenderID, msg.ReceiverID)
	return db.Raw(insertMessageIfFriends,
		msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt,
		low, high, models.FriendRequestAccepted)
}

// GetConversation returns up to limit messages between a and b in ascending
// order. When before is set only older messages are returned.
func (r *PostgresMessageRepository) GetConversation(ctx context.Context, a, b string, before uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
	if before > 0 {
		q = q.Where("id < ?", before)
	}
	if err := q.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

const latestPerPeer = `
SELECT DISTINCT ON (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id)) *
FROM messages
WHERE sender_id = ? OR receiver_id = ?
ORDER BY LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id), id DESC`

// GetLatestPerPeer returns the newest message of every conversation userID is
// part of.
func (r *PostgresMessageRepository) GetLatestPerPeer(ctx context.Context, userID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).Raw(latestPerPeer, userID, userID).Scan(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
