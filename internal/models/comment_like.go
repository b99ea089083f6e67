package models

import "time"

// CommentLike represents a like on a comment
type CommentLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CommentID uint      `json:"comment_id" gorm:"index;uniqueIndex:idx_comment_user_like"`
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_comment_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the collection name used by the web client.
func (CommentLike) TableName() string { return "post_comment_likes" }
