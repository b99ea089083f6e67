package realtime

import (
	"sync"

	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/pkg/logger"
)

// Topic identifies a change feed: a table, an event type and a row filter.
type Topic struct {
	Table  string
	Event  string
	Filter string
}

// ConversationTopic is the insert feed of the messages exchanged by a and b.
// Both participants get the same topic.
func ConversationTopic(a, b string) Topic {
	low, high := models.CanonicalPair(a, b)
	return Topic{Table: "messages", Event: "INSERT", Filter: "pair=" + low + ":" + high}
}

// NotificationTopic is the change feed of one user's notifications.
func NotificationTopic(userID string) Topic {
	return Topic{Table: "notifications", Event: "*", Filter: "user_id=" + userID}
}

// Event is a row delivered on a topic.
type Event struct {
	Topic   Topic       `json:"-"`
	ID      string      `json:"id"`
	Payload interface{} `json:"payload"`
}

// Subscription receives the events of one topic until Close is called.
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	topic Topic
	hub   *Hub
	once  sync.Once
}

// Close detaches the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub fans published rows out to topic subscribers.
type Hub struct {
	mu      sync.RWMutex
	subs    map[Topic]map[*Subscription]struct{}
	buffer  int
	metrics *metrics.Metrics
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int, m *metrics.Metrics) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[Topic]map[*Subscription]struct{}), buffer: buffer, metrics: m}
}

// Subscribe opens a subscription on topic.
func (h *Hub) Subscribe(topic Topic) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, topic: topic, hub: h}

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	h.metrics.SubscriberAdded()
	return sub
}

// Publish delivers an event to every subscriber of topic. A subscriber whose
// buffer is full misses the event.
func (h *Hub) Publish(topic Topic, id string, payload interface{}) {
	if h == nil {
		return
	}
	ev := Event{Topic: topic, ID: id, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
			logger.Log.WithField("table", topic.Table).WithField("filter", topic.Filter).
				Warn("realtime subscriber buffer full, event dropped")
		}
	}
}

// Subscribers reports the number of open subscriptions on topic.
func (h *Hub) Subscribers(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[sub.topic]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.topic)
		}
	}
	close(sub.ch)
	h.mu.Unlock()

	h.metrics.SubscriberRemoved()
}
