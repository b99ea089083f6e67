package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
)

// Relationships is the friendship service used by FriendshipHandler.
type Relationships interface {
	Friends(ctx context.Context, userID string) ([]models.Identity, error)
	PendingIncoming(ctx context.Context, userID string) ([]models.IncomingRequest, error)
	PendingOutgoing(ctx context.Context, userID string) ([]models.FriendRequest, error)
	Status(ctx context.Context, viewer, other string) (models.RelationshipStatus, error)
	SendRequest(ctx context.Context, from, to string) (*models.FriendRequest, error)
	Accept(ctx context.Context, requestID uint, actor string) (*models.FriendRequest, error)
	Reject(ctx context.Context, requestID uint, actor string) (*models.FriendRequest, error)
	Cancel(ctx context.Context, requestID uint, actor string) error
	Unfriend(ctx context.Context, userID, friendID string) error
}

// FriendshipHandler handles friendship-related HTTP requests
type FriendshipHandler struct {
	relationships Relationships
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(relationships Relationships) *FriendshipHandler {
	return &FriendshipHandler{relationships: relationships}
}

// RegisterFriendshipRoutes registers friendship routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/friends", h.ListFriends)
	g.DELETE("/friends/:user_id", h.Unfriend)
	g.GET("/friends/status/:user_id", h.GetStatus)
	g.GET("/friends/requests/incoming", h.ListIncoming)
	g.GET("/friends/requests/outgoing", h.ListOutgoing)
	g.POST("/friends/requests", h.SendRequest)
	g.PUT("/friends/requests/:id", h.RespondToRequest)
	g.DELETE("/friends/requests/:id", h.CancelRequest)
}

// ListFriends returns the caller's friends.
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	friends, err := h.relationships.Friends(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, friends)
}

// ListIncoming returns pending requests sent to the caller, with senders.
func (h *FriendshipHandler) ListIncoming(c echo.Context) error {
	requests, err := h.relationships.PendingIncoming(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// ListOutgoing returns pending requests sent by the caller.
func (h *FriendshipHandler) ListOutgoing(c echo.Context) error {
	requests, err := h.relationships.PendingOutgoing(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// GetStatus returns the relationship between the caller and another user.
func (h *FriendshipHandler) GetStatus(c echo.Context) error {
	status, err := h.relationships.Status(c.Request().Context(), middleware.CurrentUserID(c), c.Param("user_id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// SendRequest sends a friend request.
func (h *FriendshipHandler) SendRequest(c echo.Context) error {
	var req models.CreateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.relationships.SendRequest(c.Request().Context(), middleware.CurrentUserID(c), req.ToID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// RespondToRequest accepts or rejects a request sent to the caller.
func (h *FriendshipHandler) RespondToRequest(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateFriendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.CurrentUserID(c)
	var updated *models.FriendRequest
	if req.Status == models.FriendRequestAccepted {
		updated, err = h.relationships.Accept(ctx, id, userID)
	} else {
		updated, err = h.relationships.Reject(ctx, id, userID)
	}
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// CancelRequest withdraws a pending request the caller sent.
func (h *FriendshipHandler) CancelRequest(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.relationships.Cancel(c.Request().Context(), id, middleware.CurrentUserID(c)); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Unfriend removes an accepted friendship.
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	if err := h.relationships.Unfriend(c.Request().Context(), middleware.CurrentUserID(c), c.Param("user_id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
