// Package pending – memory.go is the in-memory Store.
//
// NON-DURABLE: drafts are lost on restart. Fine for demo deployments and
// tests; production uses the SQLite store.
package pending

import (
	"sync"
	"time"
)

// MemoryStore keeps pending actions in a map guarded by a mutex.
type MemoryStore struct {
	ttl     time.Duration
	mu      sync.Mutex
	actions map[string]*Action
}

// NewMemoryStore creates an in-memory store. Non-positive ttl uses
// DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		actions: make(map[string]*Action),
	}
}

// Set stores the action, overwriting any previous draft and resetting TTL.
func (s *MemoryStore) Set(userID string, action *Action) error {
	now := time.Now()
	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}
	action.ExpiresAt = now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[userID] = action
	return nil
}

// Get returns the pending action, or nil if absent or expired.
// Expired entries are removed on the way out.
func (s *MemoryStore) Get(userID string) (*Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.actions[userID]
	if !ok {
		return nil, nil
	}
	if action.Expired(time.Now()) {
		delete(s.actions, userID)
		return nil, nil
	}
	return action, nil
}

// Clear removes the pending action, if any.
func (s *MemoryStore) Clear(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actions, userID)
	return nil
}
