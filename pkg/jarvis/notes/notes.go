// Package notes stores the user's saved notes. Notes are newest-first and
// capped per user: only the most recent maxPerUser survive, which keeps the
// store bounded without a sweeper.
package notes

import "time"

// maxPerUser is how many notes are retained per user.
const maxPerUser = 50

// DefaultListLimit is how many notes the list command shows.
const DefaultListLimit = 5

// Note is one saved note.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the note store, keyed by opaque user id.
type Store interface {
	// Add saves a note for the user and returns it. Older notes past the
	// retention cap are dropped.
	Add(userID, text string) (*Note, error)

	// List returns up to limit notes, newest first. Non-positive limit
	// uses DefaultListLimit.
	List(userID string, limit int) ([]*Note, error)
}
