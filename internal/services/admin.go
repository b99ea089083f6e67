package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

// AdminService backs the moderation panel.
type AdminService struct {
	profiles   repositories.ProfileRepository
	identities *IdentityResolver
	notifier   Notifier
}

// NewAdminService creates an AdminService
func NewAdminService(profiles repositories.ProfileRepository, identities *IdentityResolver, notifier Notifier) *AdminService {
	return &AdminService{profiles: profiles, identities: identities, notifier: notifier}
}

// ProfilePage is one page of the member list.
type ProfilePage struct {
	Items []models.Profile `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ListProfiles pages through every profile. Staff only.
func (s *AdminService) ListProfiles(ctx context.Context, actor *models.Profile, page, limit int) (*ProfilePage, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.profiles.ListProfiles(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return &ProfilePage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// SetRole changes a user's role. Admin only; admins cannot demote themselves.
func (s *AdminService) SetRole(ctx context.Context, actor *models.Profile, targetID string, role models.Role) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if actor.ID == targetID && role != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.profiles.SetRole(ctx, targetID, role); err != nil {
		return notFoundOr(err, "failed to set role")
	}
	s.identities.Invalidate(ctx, targetID)
	return nil
}

// Ban marks a user as banned. Admins and moderators may ban members;
// staff accounts can only be changed by an admin through SetRole.
func (s *AdminService) Ban(ctx context.Context, actor *models.Profile, targetID string) error {
	if !actor.Role.IsStaff() || actor.ID == targetID {
		return ErrForbidden
	}
	target, err := s.profiles.GetProfileByID(ctx, targetID)
	if err != nil {
		return notFoundOr(err, "failed to load profile")
	}
	if target.Role.IsStaff() {
		return ErrForbidden
	}
	if err := s.profiles.SetRole(ctx, targetID, models.RoleBanned); err != nil {
		return notFoundOr(err, "failed to ban user")
	}
	s.identities.Invalidate(ctx, targetID)
	return nil
}

// BroadcastNews sends a NEWS notification to every profile and returns how
// many were delivered. Admin only.
func (s *AdminService) BroadcastNews(ctx context.Context, actor *models.Profile, req *models.BroadcastNewsRequest) (int, error) {
	if actor.Role != models.RoleAdmin {
		return 0, ErrForbidden
	}
	const batch = 100
	delivered := 0
	for offset := 0; ; offset += batch {
		profiles, _, err := s.profiles.ListProfiles(ctx, offset, batch)
		if err != nil {
			return delivered, fmt.Errorf("failed to list recipients: %w", err)
		}
		for i := range profiles {
			if profiles[i].Role == models.RoleBanned || profiles[i].ID == actor.ID {
				continue
			}
			_, err := s.notifier.Notify(ctx, NewNotification{
				UserID:   profiles[i].ID,
				Kind:     models.KindNews,
				Content:  strings.TrimSpace(req.Content),
				Link:     req.Link,
				Metadata: map[string]interface{}{"sender_id": actor.ID},
			})
			if err != nil {
				logger.Log.WithError(err).WithField("user_id", profiles[i].ID).Warn("failed to deliver news")
				continue
			}
			delivered++
		}
		if len(profiles) < batch {
			return delivered, nil
		}
	}
}
