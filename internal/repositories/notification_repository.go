package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/yopdevs/platform/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*models.Notification, error)
	GetByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	CountNotOwned(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteOwned(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// EnsureIndexes creates the indexes the feed queries rely on.
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}}},
	})
	return err
}

// CreateNotification stores a new notification
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// GetNotificationByID retrieves one notification regardless of owner
func (r *MongoNotificationRepository) GetNotificationByID(ctx context.Context, id string) (*models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var n models.Notification
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// GetByUserID pages through a user's notifications, newest first.
func (r *MongoNotificationRepository) GetByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts a user's unread notifications
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

// MarkRead marks one of the user's notifications as read. It reports whether
// the notification exists and belongs to userID.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountNotOwned counts how many of ids exist but belong to someone else.
func (r *MongoNotificationRepository) CountNotOwned(ctx context.Context, userID string, ids []string) (int64, error) {
	objIDs, err := toObjectIDs(ids)
	if err != nil {
		return 0, err
	}
	return r.collection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": objIDs}, "user_id": bson.M{"$ne": userID}})
}

// DeleteOwned deletes the notifications among ids that belong to userID.
func (r *MongoNotificationRepository) DeleteOwned(ctx context.Context, userID string, ids []string) (int64, error) {
	objIDs, err := toObjectIDs(ids)
	if err != nil {
		return 0, err
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteAllForUser clears a user's feed
func (r *MongoNotificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteReadBefore prunes read notifications created before cutoff.
func (r *MongoNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"is_read": true, "created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid notification ID format %q: %w", id, err)
		}
		objIDs = append(objIDs, objID)
	}
	return objIDs, nil
}
