// Package notes – memory.go is the in-memory Store.
//
// NON-DURABLE: notes are lost on restart. For demo deployments and tests.
package notes

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps notes in per-user slices, newest first.
type MemoryStore struct {
	mu    sync.Mutex
	notes map[string][]*Note
}

// NewMemoryStore creates an empty in-memory note store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string][]*Note)}
}

// Add prepends a note and trims the user's list to the retention cap.
func (s *MemoryStore) Add(userID, text string) (*Note, error) {
	note := &Note{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]*Note{note}, s.notes[userID]...)
	if len(list) > maxPerUser {
		list = list[:maxPerUser]
	}
	s.notes[userID] = list
	return note, nil
}

// List returns up to limit notes, newest first.
func (s *MemoryStore) List(userID string, limit int) ([]*Note, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notes[userID]
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]*Note, len(list))
	copy(out, list)
	return out, nil
}
