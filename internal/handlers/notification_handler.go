package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/services"
)

// NotificationFeed is the notification service used by NotificationHandler.
type NotificationFeed interface {
	List(ctx context.Context, userID string, page, limit int) (*services.NotificationPage, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteOne(ctx context.Context, userID, id string) error
	DeleteSelected(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	feed NotificationFeed
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(feed NotificationFeed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.POST("/notifications/delete", h.DeleteSelected)
	g.DELETE("/notifications/:id", h.DeleteOne)
	g.DELETE("/notifications", h.DeleteAll)
}

// GetNotifications returns a rendered page of the feed (?page=&limit=).
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, err := h.feed.List(c.Request().Context(), middleware.CurrentUserID(c), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetUnreadCount returns the badge count.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	n, err := h.feed.UnreadCount(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkAsRead marks one notification as read.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.feed.MarkRead(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllAsRead marks the whole feed as read.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	n, err := h.feed.MarkAllRead(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// DeleteOne deletes one of the caller's notifications.
func (h *NotificationHandler) DeleteOne(c echo.Context) error {
	if err := h.feed.DeleteOne(c.Request().Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteSelected deletes a selection. Nothing is deleted if any id belongs
// to another user.
func (h *NotificationHandler) DeleteSelected(c echo.Context) error {
	var req models.DeleteNotificationsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.feed.DeleteSelected(c.Request().Context(), middleware.CurrentUserID(c), req.IDs)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// DeleteAll clears the caller's feed.
func (h *NotificationHandler) DeleteAll(c echo.Context) error {
	n, err := h.feed.DeleteAll(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
