package models

import "time"

// Post is a forum topic.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  string    `json:"author_id" gorm:"size:128;index:idx_post_author_day,priority:1;not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_author_day,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,min=1,max=10000"`
	Tags    string `json:"tags,omitempty" validate:"omitempty,max=200"`
}

// PostView is a post enriched with its author and engagement.
type PostView struct {
	Post
	Author    Identity `json:"author"`
	Likes     int64    `json:"likes"`
	Comments  int64    `json:"comments"`
	LikedByMe bool     `json:"liked_by_me"`
}
