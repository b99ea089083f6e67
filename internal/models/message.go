package models

import "time"

// Message is an immutable direct message between two friends.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   string    `json:"sender_id" gorm:"size:128;index:idx_message_pair,priority:1;not null"`
	ReceiverID string    `json:"receiver_id" gorm:"size:128;index:idx_message_pair,priority:2;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// SendMessageRequest defines the request body for sending a message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=4000"`
}

// ConversationSummary is one entry of the viewer's inbox.
type ConversationSummary struct {
	Peer        Identity  `json:"peer"`
	LastMessage *Message  `json:"last_message,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
