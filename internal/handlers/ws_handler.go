package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/realtime"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// Subscriber opens realtime subscriptions.
type Subscriber interface {
	Subscribe(topic realtime.Topic) *realtime.Subscription
}

// UnreadCounter returns a user's unread notification count.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// wsFrame is what the streams write to the client.
type wsFrame struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WSHandler streams realtime changes over WebSocket.
type WSHandler struct {
	hub      Subscriber
	unread   UnreadCounter
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. allowedOrigins empty or "*" accepts
// every origin.
func NewWSHandler(hub Subscriber, unread UnreadCounter, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:    hub,
		unread: unread,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterWSRoutes registers the stream routes
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws/messages/:peer_id", h.StreamConversation)
	g.GET("/ws/notifications", h.StreamNotifications)
}

// StreamConversation pushes new messages between the caller and a peer.
// Each message is delivered once even if the feed repeats it.
func (h *WSHandler) StreamConversation(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	topic := realtime.ConversationTopic(userID, c.Param("peer_id"))

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Log.WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	timeline := realtime.NewTimeline(func(ev realtime.Event) string { return ev.ID })
	h.stream(conn, userID, topic, nil, func(ev realtime.Event) *wsFrame {
		if !timeline.Merge(ev) {
			return nil
		}
		return &wsFrame{Type: "message", ID: ev.ID, Payload: ev.Payload}
	})
	return nil
}

// StreamNotifications pushes the caller's unread badge: once on connect,
// then after every change to their notifications.
func (h *WSHandler) StreamNotifications(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	unread, err := h.unread.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return httpError(c, err)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Log.WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	initial := &wsFrame{Type: "notifications", Payload: map[string]int64{"unread": unread}}
	h.stream(conn, userID, realtime.NotificationTopic(userID), initial, func(ev realtime.Event) *wsFrame {
		return &wsFrame{Type: "notifications", ID: ev.ID, Payload: ev.Payload}
	})
	return nil
}

// stream subscribes to topic and writes frames until the client goes away.
// render returns nil to skip an event.
func (h *WSHandler) stream(conn *websocket.Conn, userID string, topic realtime.Topic, initial *wsFrame, render func(realtime.Event) *wsFrame) {
	sub := h.hub.Subscribe(topic)
	defer sub.Close()
	defer conn.Close()

	log := logger.Log.WithField("user_id", userID).WithField("table", topic.Table)
	log.Debug("websocket connected")

	// The read loop only handles control frames and detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(frame *wsFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			log.WithError(err).Debug("websocket write failed")
			return false
		}
		return true
	}

	if initial != nil && !write(initial) {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			log.Debug("websocket disconnected")
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if frame := render(ev); frame != nil && !write(frame) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
