package realtime

import "sync"

// Timeline is an append-only list that ignores items it has already seen.
// Messages can arrive twice, once from the sender's own write and once from
// the change feed echo; merging by id keeps exactly one copy.
type Timeline[T any] struct {
	mu    sync.Mutex
	key   func(T) string
	seen  map[string]struct{}
	items []T
}

// NewTimeline creates a timeline keyed by key.
func NewTimeline[T any](key func(T) string) *Timeline[T] {
	return &Timeline[T]{key: key, seen: make(map[string]struct{})}
}

// Merge appends item unless its key is already present and reports whether it
// was appended.
func (t *Timeline[T]) Merge(item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(item)
	if _, ok := t.seen[k]; ok {
		return false
	}
	t.seen[k] = struct{}{}
	t.items = append(t.items, item)
	return true
}

// Items returns a copy of the merged items in arrival order.
func (t *Timeline[T]) Items() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, len(t.items))
	copy(out, t.items)
	return out
}

// Len reports the number of merged items.
func (t *Timeline[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
