package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/models"
)

// ProfileLoader loads a profile by user id.
type ProfileLoader interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// RequireStaff lets admins and moderators through and stores their profile
// in the context. It must run after AuthMiddleware.
func RequireStaff(profiles ProfileLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := CurrentUserID(c)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
			}
			profile, err := profiles.GetProfile(c.Request().Context(), userID)
			if err != nil || profile == nil {
				return echo.NewHTTPError(http.StatusForbidden, "Staff access required")
			}
			if !profile.Role.IsStaff() {
				return echo.NewHTTPError(http.StatusForbidden, "Staff access required")
			}
			c.Set(ContextProfile, profile)
			return next(c)
		}
	}
}

// CurrentProfile returns the profile stored by RequireStaff.
func CurrentProfile(c echo.Context) (*models.Profile, error) {
	profile, ok := c.Get(ContextProfile).(*models.Profile)
	if !ok || profile == nil {
		return nil, errors.New("profile not loaded")
	}
	return profile, nil
}
