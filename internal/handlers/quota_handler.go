package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
)

// QuotaHandler reports both daily creation quotas at once.
type QuotaHandler struct {
	forum       Forum
	marketplace Marketplace
}

// NewQuotaHandler creates a new QuotaHandler
func NewQuotaHandler(forum Forum, marketplace Marketplace) *QuotaHandler {
	return &QuotaHandler{forum: forum, marketplace: marketplace}
}

// RegisterQuotaRoutes registers the quota route
func (h *QuotaHandler) RegisterQuotaRoutes(g *echo.Group) {
	g.GET("/quota", h.GetQuota)
}

// GetQuota returns the caller's post and project decisions for today.
func (h *QuotaHandler) GetQuota(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)

	posts, err := h.forum.PostQuota(ctx, userID)
	if err != nil {
		return httpError(c, err)
	}
	projects, err := h.marketplace.ProjectQuota(ctx, userID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts, "projects": projects})
}
