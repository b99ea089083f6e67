package models

import "time"

// Like is one user's like on a post; unique per (post, user).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;uniqueIndex:idx_post_user_like"`
	UserID    string    `json:"user_id" gorm:"size:128;index;uniqueIndex:idx_post_user_like"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the collection name used by the web client.
func (Like) TableName() string { return "post_likes" }
