package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendRequestStatus is the lifecycle state of a relationship edge.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// IsTerminal reports whether no further transition is expected.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == FriendRequestAccepted || s == FriendRequestRejected
}

// FriendRequest is a directed relationship edge. PairLow/PairHigh hold the
// unordered pair in canonical order; at most one pending or accepted edge may
// exist per pair.
type FriendRequest struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	FromID    string              `json:"from_id" gorm:"size:128;index;not null"`
	ToID      string              `json:"to_id" gorm:"size:128;index;not null"`
	PairLow   string              `json:"-" gorm:"size:128;not null;uniqueIndex:idx_friend_pair_open,where:status <> 'rejected'"`
	PairHigh  string              `json:"-" gorm:"size:128;not null;uniqueIndex:idx_friend_pair_open,where:status <> 'rejected'"`
	Status    FriendRequestStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// CanonicalPair orders two ids so that the pair is direction independent.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// BeforeCreate fills the canonical pair.
func (f *FriendRequest) BeforeCreate(_ *gorm.DB) error {
	f.PairLow, f.PairHigh = CanonicalPair(f.FromID, f.ToID)
	return nil
}

// Other returns the id on the other side of the edge from userID.
func (f *FriendRequest) Other(userID string) string {
	if f.FromID == userID {
		return f.ToID
	}
	return f.FromID
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	ToID string `json:"to_id" validate:"required"`
}

// UpdateFriendRequest defines the request body for accepting/rejecting a friend request
type UpdateFriendRequest struct {
	Status FriendRequestStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

// IncomingRequest is a pending request joined with its sender's identity.
type IncomingRequest struct {
	FriendRequest
	From Identity `json:"from"`
}

// RelationshipStatus describes how the viewer relates to another user.
type RelationshipStatus string

const (
	RelationshipNone            RelationshipStatus = "none"
	RelationshipPendingOutgoing RelationshipStatus = "pending_outgoing"
	RelationshipPendingIncoming RelationshipStatus = "pending_incoming"
	RelationshipFriends         RelationshipStatus = "friends"
)
