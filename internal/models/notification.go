package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationKind is the closed set of notification types.
type NotificationKind string

const (
	KindChat           NotificationKind = "CHAT"
	KindLike           NotificationKind = "LIKE"
	KindCommentLike    NotificationKind = "COMMENT_LIKE"
	KindForumReply     NotificationKind = "FORUM_REPLY"
	KindInterest       NotificationKind = "INTEREST"
	KindFriendRequest  NotificationKind = "FRIEND_REQUEST"
	KindFriendAccepted NotificationKind = "FRIEND_ACCEPTED"
	KindNews           NotificationKind = "NEWS"
	KindOther          NotificationKind = "OTHER"
)

// NotificationKinds lists every kind.
var NotificationKinds = []NotificationKind{
	KindChat, KindLike, KindCommentLike, KindForumReply, KindInterest,
	KindFriendRequest, KindFriendAccepted, KindNews, KindOther,
}

// ParseNotificationKind maps a stored type string onto the closed set.
// Unknown strings become KindOther.
func ParseNotificationKind(s string) NotificationKind {
	for _, k := range NotificationKinds {
		if string(k) == s {
			return k
		}
	}
	return KindOther
}

// Notification is a recipient-owned feed entry (MongoDB).
type Notification struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID     string                 `json:"user_id" bson:"user_id"`
	Type       NotificationKind       `json:"type" bson:"type"`
	Content    string                 `json:"content" bson:"content"`
	FromUserID *string                `json:"from_user_id,omitempty" bson:"from_user_id,omitempty"`
	Link       *string                `json:"link,omitempty" bson:"link,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsRead     bool                   `json:"is_read" bson:"is_read"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}

// MetadataString returns metadata[key] when it is a non-empty string.
func (n *Notification) MetadataString(key string) string {
	if n.Metadata == nil {
		return ""
	}
	if s, ok := n.Metadata[key].(string); ok {
		return s
	}
	return ""
}

// DeleteNotificationsRequest selects notifications for bulk deletion.
type DeleteNotificationsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=200,dive,len=24,hexadecimal"`
}

// BroadcastNewsRequest is the admin NEWS broadcast body.
type BroadcastNewsRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
	Link    string `json:"link,omitempty" validate:"omitempty,max=300"`
}
