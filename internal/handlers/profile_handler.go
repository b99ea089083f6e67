package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/storage"
)

const maxAvatarBytes = 5 << 20

// Profiles is the profile service used by ProfileHandler.
type Profiles interface {
	EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error)
	CompleteProfile(ctx context.Context, userID, email string, req *models.CompleteProfileRequest) (*models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Profile, error)
	SearchProfiles(ctx context.Context, query string, limit int) ([]models.Profile, error)
	UploadAvatar(ctx context.Context, userID, contentType string, r io.Reader) (string, error)
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profiles Profiles
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterProfileRoutes registers profile routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetMyProfile)
	g.POST("/profile", h.CompleteProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/profile/avatar", h.UploadAvatar)
	g.GET("/profiles/search", h.SearchProfiles)
	g.GET("/profiles/:id", h.GetProfile)
}

// GetMyProfile returns the caller's profile, creating a pending one if needed.
func (h *ProfileHandler) GetMyProfile(c echo.Context) error {
	profile, err := h.profiles.EnsureProfile(c.Request().Context(), middleware.CurrentUserID(c), middleware.CurrentEmail(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// CompleteProfile finishes sign-up.
func (h *ProfileHandler) CompleteProfile(c echo.Context) error {
	var req models.CompleteProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.CompleteProfile(c.Request().Context(), middleware.CurrentUserID(c), middleware.CurrentEmail(c), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

// UpdateProfile edits the caller's profile.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.UpdateProfile(c.Request().Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile returns any user's profile.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profiles.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// SearchProfiles searches by name or specialty (?q=).
func (h *ProfileHandler) SearchProfiles(c echo.Context) error {
	profiles, err := h.profiles.SearchProfiles(c.Request().Context(), c.QueryParam("q"), queryInt(c, "limit", 20))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

// UploadAvatar accepts a multipart "avatar" image.
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "avatar file is required")
	}
	if file.Size > maxAvatarBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "avatar must be at most 5 MB")
	}
	contentType := file.Header.Get("Content-Type")
	if _, ok := storage.AllowedAvatarTypes[contentType]; !ok {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "avatar must be a PNG, JPEG, WebP or GIF image")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read avatar")
	}
	defer src.Close()

	url, err := h.profiles.UploadAvatar(c.Request().Context(), middleware.CurrentUserID(c), contentType, src)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}
