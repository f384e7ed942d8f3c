// Package pending stores the per-user pending action: a drafted multi-step
// command (like "create a note") waiting for the user to save, edit, or
// cancel it across several messages.
//
// At most one pending action exists per user. Setting a new one overwrites
// the old and resets its TTL; expiry is lazy — an expired action is simply
// not returned and is cleaned up on the next access.
package pending

import (
	"time"
)

// DefaultTTL is how long a draft survives without a decision.
const DefaultTTL = 30 * time.Minute

// Mode says where a pending action is in its lifecycle.
type Mode string

const (
	// ModeDraft means the action is drafted and awaiting save/edit/cancel.
	ModeDraft Mode = "draft"

	// ModeEditing means the user asked to edit; the next plain message
	// replaces the draft fields.
	ModeEditing Mode = "editing"
)

// Action is a drafted, unconfirmed user action.
type Action struct {
	// Intent names the action being drafted (e.g. "create_note").
	Intent string `json:"intent"`

	// Fields is the draft payload, keyed by field name.
	Fields map[string]string `json:"fields"`

	// Mode is the current lifecycle mode.
	Mode Mode `json:"mode"`

	// CreatedAt is when the draft was first created.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the draft silently disappears.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the action's TTL has passed.
func (a *Action) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}

// Store is the pending-action store, keyed by opaque user id.
// Implementations must treat expired entries as absent.
type Store interface {
	// Set stores the action for the user, overwriting any existing one
	// and stamping CreatedAt/ExpiresAt.
	Set(userID string, action *Action) error

	// Get returns the user's pending action, or nil if there is none or
	// it has expired.
	Get(userID string) (*Action, error)

	// Clear removes the user's pending action, if any.
	Clear(userID string) error
}
