package models

import "time"

// Comment is a reply on a forum post (post_comments).
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	AuthorID  string    `json:"author_id" gorm:"size:128;index;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Likes []CommentLike `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the collection name used by the web client.
func (Comment) TableName() string { return "post_comments" }

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// CommentView is a comment enriched with its author and engagement.
type CommentView struct {
	Comment
	Author    Identity `json:"author"`
	Likes     int64    `json:"likes"`
	LikedByMe bool     `json:"liked_by_me"`
}
