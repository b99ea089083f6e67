package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/services"
)

// Likes is the engagement service used by LikeHandler.
type Likes interface {
	ToggleLike(ctx context.Context, target services.Target, itemID uint, userID string) (services.Engagement, error)
}

// LikeHandler handles like toggles on posts and comments
type LikeHandler struct {
	likes Likes
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes Likes) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.toggle(services.TargetPost))
	g.POST("/comments/:id/like", h.toggle(services.TargetComment))
}

// toggle flips the caller's like and returns the item's engagement.
func (h *LikeHandler) toggle(target services.Target) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := paramUint(c, "id")
		if err != nil {
			return err
		}
		engagement, err := h.likes.ToggleLike(c.Request().Context(), target, id, middleware.CurrentUserID(c))
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, engagement)
	}
}
