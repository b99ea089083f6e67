package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/repositories"
)

// activeProfile loads userID's profile and rejects banned or unfinished
// accounts.
func activeProfile(ctx context.Context, profiles repositories.ProfileRepository, userID string) (*models.Profile, error) {
	profile, err := profiles.GetProfileByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProfileIncomplete
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	switch profile.Role {
	case models.RoleBanned:
		return nil, ErrBanned
	case models.RolePending:
		return nil, ErrProfileIncomplete
	}
	return profile, nil
}

// notBanned fails with ErrBanned when userID's profile is banned. Users who
// have not finished onboarding pass.
func notBanned(ctx context.Context, profiles repositories.ProfileRepository, userID string) error {
	profile, err := profiles.GetProfileByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.Role == models.RoleBanned {
		return ErrBanned
	}
	return nil
}

// trimmed returns v without surrounding whitespace, or ErrBlankContent when
// nothing is left.
func trimmed(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ErrBlankContent
	}
	return v, nil
}

// canModerate reports whether actor may remove content owned by ownerID.
func canModerate(actor *models.Profile, ownerID string) bool {
	return actor.ID == ownerID || actor.Role.IsStaff()
}
