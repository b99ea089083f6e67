package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/services"
)

// Messaging is the chat service used by MessageHandler.
type Messaging interface {
	CanSend(ctx context.Context, sender, receiver string) (bool, error)
	Send(ctx context.Context, sender, receiver, content string) (*services.SendResult, error)
	Conversation(ctx context.Context, viewer, peer string, before uint, limit int) ([]models.Message, error)
	Conversations(ctx context.Context, viewer string) ([]models.ConversationSummary, error)
}

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	messaging Messaging
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messaging Messaging) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

// RegisterMessageRoutes registers message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/messages", h.ListConversations)
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/:peer_id", h.GetConversation)
	g.GET("/messages/:peer_id/can-send", h.CanSend)
}

// ListConversations returns one entry per friend with the latest message.
func (h *MessageHandler) ListConversations(c echo.Context) error {
	conversations, err := h.messaging.Conversations(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, conversations)
}

// GetConversation returns messages with a peer, oldest first (?before=&limit=).
func (h *MessageHandler) GetConversation(c echo.Context) error {
	var before uint
	if v := c.QueryParam("before"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid before")
		}
		before = uint(n)
	}
	messages, err := h.messaging.Conversation(c.Request().Context(), middleware.CurrentUserID(c), c.Param("peer_id"), before, queryInt(c, "limit", 50))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

// CanSend tells the client whether the compose box should be enabled.
func (h *MessageHandler) CanSend(c echo.Context) error {
	ok, err := h.messaging.CanSend(c.Request().Context(), middleware.CurrentUserID(c), c.Param("peer_id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"can_send": ok})
}

// SendMessage sends a message to a friend. A refused send is reported with
// 403 and the reason; nothing is stored.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.messaging.Send(c.Request().Context(), middleware.CurrentUserID(c), req.ReceiverID, req.Content)
	if err != nil {
		return httpError(c, err)
	}
	if !result.Sent {
		return c.JSON(http.StatusForbidden, result)
	}
	return c.JSON(http.StatusCreated, result)
}
