package models

import "time"

// InterestStatus is the owner's decision on an interest.
type InterestStatus string

const (
	InterestPending  InterestStatus = "pending"
	InterestAccepted InterestStatus = "accepted"
	InterestDeclined InterestStatus = "declined"
)

// ProjectInterest records that a user wants to join a project. Accepted
// interests are the project's partners.
type ProjectInterest struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProjectID uint           `json:"project_id" gorm:"uniqueIndex:idx_project_user_interest;not null"`
	UserID    string         `json:"user_id" gorm:"size:128;uniqueIndex:idx_project_user_interest;index;not null"`
	Message   string         `json:"message" gorm:"type:text"`
	Status    InterestStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ExpressInterestRequest is the body of an interest submission.
type ExpressInterestRequest struct {
	Message string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

// DecideInterestRequest is the owner's decision body.
type DecideInterestRequest struct {
	Status InterestStatus `json:"status" validate:"required,oneof=accepted declined"`
}

// InterestView is an interest joined with the interested user.
type InterestView struct {
	ProjectInterest
	User Identity `json:"user"`
}
