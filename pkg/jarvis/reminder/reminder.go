// Package reminder implements the durable reminder scheduler: a
// time-ordered store of scheduled notifications polled by a background
// loop. Entries fire at most once — the poll atomically removes an entry
// before delivering it, so a concurrent re-poll can never select it again,
// and with the SQLite storage entries survive process restarts.
package reminder

import "time"

// Entry is one scheduled reminder.
type Entry struct {
	// ID is the unique reminder id (random, collision-resistant).
	ID string `json:"id"`

	// Channel is the destination chat to notify.
	Channel string `json:"channel"`

	// Body is the text delivered when the reminder fires.
	Body string `json:"body"`

	// FireAt is the absolute time the reminder is due.
	FireAt time.Time `json:"fire_at"`

	// CreatedAt is when the reminder was scheduled.
	CreatedAt time.Time `json:"created_at"`
}

// Storage persists reminder entries together with their due index. The two
// must stay consistent: every live entry is findable by FireAt, and a
// claimed entry is gone from both.
type Storage interface {
	// Put stores a new entry.
	Put(e *Entry) error

	// ClaimDue atomically removes and returns up to limit entries with
	// FireAt <= now, ordered by FireAt. Claimed entries will never be
	// returned again, even if delivery subsequently fails.
	ClaimDue(now time.Time, limit int) ([]*Entry, error)

	// List returns the channel's live entries ordered by FireAt.
	List(channel string) ([]*Entry, error)

	// Delete removes one entry owned by the channel. Returns false if no
	// such entry exists.
	Delete(channel, id string) (bool, error)

	// Count returns the number of live entries (for health/debug output).
	Count() (int, error)
}
