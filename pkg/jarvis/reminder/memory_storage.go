// Package reminder – memory_storage.go is the in-memory Storage: a min-heap
// ordered by FireAt plus an id index.
//
// NON-DURABLE: scheduled reminders are lost on restart. Acceptable only for
// ephemeral/demo deployments; anything scheduling more than a few seconds
// out should use the SQLite storage.
package reminder

import (
	"container/heap"
	"sort"
	"sync"
	"time"
)

// MemoryStorage keeps entries in a FireAt-ordered heap.
type MemoryStorage struct {
	mu    sync.Mutex
	queue dueQueue
	byID  map[string]*Entry
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{byID: make(map[string]*Entry)}
}

// Put stores a new entry.
func (s *MemoryStorage) Put(e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.queue, e)
	s.byID[e.ID] = e
	return nil
}

// ClaimDue pops and returns up to limit entries with FireAt <= now.
func (s *MemoryStorage) ClaimDue(now time.Time, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Entry
	for len(s.queue) > 0 && (limit <= 0 || len(due) < limit) {
		next := s.queue[0]
		if next.FireAt.After(now) {
			break
		}
		heap.Pop(&s.queue)
		if _, live := s.byID[next.ID]; !live {
			continue // deleted while queued
		}
		delete(s.byID, next.ID)
		due = append(due, next)
	}
	return due, nil
}

// List returns the channel's entries ordered by FireAt.
func (s *MemoryStorage) List(channel string) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Entry
	for _, e := range s.byID {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

// Delete removes one entry owned by the channel. The heap slot is left in
// place and skipped lazily by ClaimDue.
func (s *MemoryStorage) Delete(channel, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok || e.Channel != channel {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

// Count returns the number of live entries.
func (s *MemoryStorage) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID), nil
}

// dueQueue is a min-heap of entries ordered by FireAt.
type dueQueue []*Entry

func (q dueQueue) Len() int           { return len(q) }
func (q dueQueue) Less(i, j int) bool { return q[i].FireAt.Before(q[j].FireAt) }
func (q dueQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *dueQueue) Push(x any)        { *q = append(*q, x.(*Entry)) }
func (q *dueQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}
