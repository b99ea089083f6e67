package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
)

// ProfileBootstrapper creates the profile of a user on first login.
type ProfileBootstrapper interface {
	EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error)
}

// AuthHandler exchanges Firebase ID tokens for local sessions.
type AuthHandler struct {
	profiles     ProfileBootstrapper
	verifier     middleware.TokenVerifier
	sessions     *middleware.SessionIssuer
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(profiles ProfileBootstrapper, verifier middleware.TokenVerifier, sessions *middleware.SessionIssuer, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		profiles:     profiles,
		verifier:     verifier,
		sessions:     sessions,
		secureCookie: secureCookie,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/session", h.CreateSession)
	g.POST("/logout", h.Logout)
}

// SessionRequest is the body of a login.
type SessionRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// SessionResponse is returned after a login.
type SessionResponse struct {
	Token           string          `json:"token"`
	ExpiresAt       time.Time       `json:"expires_at"`
	Profile         *models.Profile `json:"profile"`
	NeedsOnboarding bool            `json:"needs_onboarding"`
}

// CreateSession verifies a Firebase ID token, makes sure the user has a
// profile and issues a session token, also set as an HTTP-only cookie.
func (h *AuthHandler) CreateSession(c echo.Context) error {
	var req SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	uid, email, err := middleware.VerifyIDToken(ctx, h.verifier, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	profile, err := h.profiles.EnsureProfile(ctx, uid, email)
	if err != nil {
		return httpError(c, err)
	}

	token, expires, err := h.sessions.Issue(uid, email)
	if err != nil {
		return httpError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, SessionResponse{
		Token:           token,
		ExpiresAt:       expires,
		Profile:         profile,
		NeedsOnboarding: profile.Role == models.RolePending,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}
