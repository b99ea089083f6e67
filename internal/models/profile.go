package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Role is the enumerated account role. The zero value means sign-up has not
// been completed yet.
type Role string

const (
	RolePending   Role = ""
	RoleMember    Role = "MEMBER"
	RoleDev       Role = "DEV"
	RoleBusiness  Role = "BUSINESS"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleBanned    Role = "BANNED"
)

// IsStaff reports whether the role may use the moderation panel.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// Profile is the identity record. ID is the Firebase UID.
type Profile struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:128"`
	Email              string    `json:"email,omitempty" gorm:"size:255;index"`
	FullName           string    `json:"full_name" gorm:"size:120"`
	AvatarURL          *string   `json:"avatar_url"`
	Role               Role      `json:"role" gorm:"type:varchar(20);index"`
	Bio                string    `json:"bio"`
	Location           string    `json:"location" gorm:"size:120"`
	Specialties        string    `json:"specialties"` // comma-separated tags
	AvailabilityStatus string    `json:"availability_status" gorm:"size:40"`
	GithubURL          string    `json:"github_url"`
	LinkedinURL        string    `json:"linkedin_url"`
	WebsiteURL         string    `json:"website_url"`
	Slug               *string   `json:"slug,omitempty" gorm:"uniqueIndex;size:80"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SpecialtyTags splits Specialties into trimmed, non-empty tags.
func (p *Profile) SpecialtyTags() []string {
	var tags []string
	for _, t := range strings.Split(p.Specialties, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ToIdentity returns the display fields used across the app.
func (p *Profile) ToIdentity() Identity {
	return Identity{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL, Role: p.Role}
}

// Identity is the compact display profile attached to other records.
type Identity struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Role      Role    `json:"role"`
}

// CompleteProfileRequest is sent once, when sign-up is completed.
type CompleteProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Role     Role   `json:"role" validate:"required,oneof=MEMBER DEV BUSINESS"`
}

// UpdateProfileRequest defines the editable profile fields. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName           *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=120"`
	Bio                *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Location           *string `json:"location,omitempty" validate:"omitempty,max=120"`
	Specialties        *string `json:"specialties,omitempty" validate:"omitempty,max=500"`
	AvailabilityStatus *string `json:"availability_status,omitempty" validate:"omitempty,max=40"`
	GithubURL          *string `json:"github_url,omitempty" validate:"omitempty,url"`
	LinkedinURL        *string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	WebsiteURL         *string `json:"website_url,omitempty" validate:"omitempty,url"`
	Slug               *string `json:"slug,omitempty" validate:"omitempty,min=3,max=80,alphanumunicode"`
}

// UpdateRoleRequest is the admin role change body.
type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=MEMBER DEV BUSINESS ADMIN MODERATOR BANNED"`
}

// SessionClaims are the claims of the local session token issued after a
// Firebase login.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
