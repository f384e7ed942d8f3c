// Package dedup guards the inbound pipeline against duplicate webhook
// deliveries. The platform redelivers updates it thinks were not
// acknowledged, so every update id is checked against a bounded window of
// recently seen ids before any side effect runs.
//
// The window is best effort: once capacity is exceeded the oldest ids are
// evicted and a very late redelivery would be treated as new. That is
// acceptable — this is a shield against retry storms, not an exactly-once
// guarantee, and the window is deliberately not persisted.
package dedup

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity matches the update-id window the bot has always used.
const DefaultCapacity = 700

// Window is a bounded set of recently seen event ids with insertion-order
// eviction. Safe for concurrent use.
//
// Backed by an LRU cache used in insert-only mode: Contains does not touch
// recency, so eviction order stays exactly first-in first-out.
type Window struct {
	cache *lru.Cache[string, struct{}]
}

// NewWindow creates a window holding up to capacity ids.
// Non-positive capacity falls back to DefaultCapacity.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, struct{}](capacity)
	if err != nil {
		// lru.New only fails on non-positive size, which is handled above.
		panic(err)
	}
	return &Window{cache: cache}
}

// Seen records id and reports whether it was already in the window.
func (w *Window) Seen(id string) bool {
	if w.cache.Contains(id) {
		return true
	}
	w.cache.Add(id, struct{}{})
	return false
}

// Len returns the number of ids currently held.
func (w *Window) Len() int { return w.cache.Len() }
