package models

import "time"

// ProjectStatus is the marketplace state of a project.
type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectClosed     ProjectStatus = "closed"
)

// Project is a marketplace listing.
type Project struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	OwnerID     string        `json:"owner_id" gorm:"size:128;index:idx_project_owner_day,priority:1;not null"`
	Title       string        `json:"title" gorm:"size:200;not null"`
	Description string        `json:"description" gorm:"type:text"`
	Stack       string        `json:"stack"`
	Budget      string        `json:"budget" gorm:"size:80"`
	IsPublic    bool          `json:"is_public" gorm:"default:true"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);default:'open'"`
	CreatedAt   time.Time     `json:"created_at" gorm:"index:idx_project_owner_day,priority:2"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Interests []ProjectInterest `json:"-" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// CreateProjectRequest defines the request body for creating a project.
type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=10,max=10000"`
	Stack       string `json:"stack,omitempty" validate:"omitempty,max=300"`
	Budget      string `json:"budget,omitempty" validate:"omitempty,max=80"`
	IsPublic    *bool  `json:"is_public,omitempty"`
}

// ProjectView is a project enriched with its owner.
type ProjectView struct {
	Project
	Owner Identity `json:"owner"`
}

// Portfolio is the public resume page payload.
type Portfolio struct {
	Profile  Profile   `json:"profile"`
	Projects []Project `json:"projects"`
}

// UpdateProjectStatusRequest is the owner's status change body.
type UpdateProjectStatusRequest struct {
	Status ProjectStatus `json:"status" validate:"required,oneof=open in_progress closed"`
}
