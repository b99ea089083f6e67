package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/services"
)

// Moderation is the admin service used by AdminHandler.
type Moderation interface {
	ListProfiles(ctx context.Context, actor *models.Profile, page, limit int) (*services.ProfilePage, error)
	SetRole(ctx context.Context, actor *models.Profile, targetID string, role models.Role) error
	Ban(ctx context.Context, actor *models.Profile, targetID string) error
	BroadcastNews(ctx context.Context, actor *models.Profile, req *models.BroadcastNewsRequest) (int, error)
}

// AdminHandler serves the moderation panel. Its routes are mounted behind
// middleware.RequireStaff.
type AdminHandler struct {
	admin Moderation
	forum Forum
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin Moderation, forum Forum) *AdminHandler {
	return &AdminHandler{admin: admin, forum: forum}
}

// RegisterAdminRoutes registers moderation routes on a staff-only group
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/profiles", h.ListProfiles)
	g.PUT("/profiles/:id/role", h.SetRole)
	g.POST("/profiles/:id/ban", h.Ban)
	g.DELETE("/posts/:id", h.DeletePost)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/news", h.BroadcastNews)
}

// ListProfiles pages through all members.
func (h *AdminHandler) ListProfiles(c echo.Context) error {
	actor, err := middleware.CurrentProfile(c)
	if err != nil {
		return httpError(c, err)
	}
	page, err := h.admin.ListProfiles(c.Request().Context(), actor, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// SetRole changes a member's role. Admin only.
func (h *AdminHandler) SetRole(c echo.Context) error {
	actor, err := middleware.CurrentProfile(c)
	if err != nil {
		return httpError(c, err)
	}
	var req models.UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.admin.SetRole(c.Request().Context(), actor, c.Param("id"), req.Role); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Ban bans a member.
func (h *AdminHandler) Ban(c echo.Context) error {
	actor, err := middleware.CurrentProfile(c)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.admin.Ban(c.Request().Context(), actor, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeletePost removes any post.
func (h *AdminHandler) DeletePost(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.forum.DeletePost(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteComment removes any comment.
func (h *AdminHandler) DeleteComment(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.forum.DeleteComment(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BroadcastNews sends a NEWS notification to every member. Admin only.
func (h *AdminHandler) BroadcastNews(c echo.Context) error {
	actor, err := middleware.CurrentProfile(c)
	if err != nil {
		return httpError(c, err)
	}
	var req models.BroadcastNewsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	delivered, err := h.admin.BroadcastNews(c.Request().Context(), actor, &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"delivered": delivered})
}
