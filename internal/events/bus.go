package events

import "sync"

// NotificationsChanged tells subscribers that a user's notification feed
// changed. Unread is the count after the change, or -1 when unknown.
type NotificationsChanged struct {
	UserID string `json:"user_id"`
	Unread int64  `json:"unread"`
	Reason string `json:"reason"`
}

// Handler receives published events.
type Handler[T any] func(T)

// Bus is an in-process publish/subscribe channel for one event type.
// Handlers run synchronously on the publisher's goroutine, in subscription
// order.
type Bus[T any] struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler[T]
	order    []int
}

// NewBus returns an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{handlers: make(map[int]Handler[T])}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus[T]) Subscribe(h Handler[T]) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ev to every current subscriber. A nil bus drops events.
func (b *Bus[T]) Publish(ev T) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler[T], 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Len reports the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}
