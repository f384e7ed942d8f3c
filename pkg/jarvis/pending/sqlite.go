// Package pending – sqlite.go is the durable Store backed by the central
// jarvis.db. The "pending" table must already exist (created by
// assistant.OpenDatabase).
package pending

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteStore persists pending actions in the "pending" table.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteStore creates a SQLite-backed store using the shared DB.
// Non-positive ttl uses DefaultTTL.
func NewSQLiteStore(db *sql.DB, ttl time.Duration) *SQLiteStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SQLiteStore{db: db, ttl: ttl}
}

// Set stores the action (insert or replace) and resets its TTL.
func (s *SQLiteStore) Set(userID string, action *Action) error {
	now := time.Now()
	if action.CreatedAt.IsZero() {
		action.CreatedAt = now
	}
	action.ExpiresAt = now.Add(s.ttl)

	fields, err := json.Marshal(action.Fields)
	if err != nil {
		return fmt.Errorf("marshal pending fields: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO pending
			(user_id, intent, fields, mode, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID,
		action.Intent,
		string(fields),
		string(action.Mode),
		action.CreatedAt.UTC().Format(time.RFC3339),
		action.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save pending action for %q: %w", userID, err)
	}
	return nil
}

// Get returns the pending action, or nil if absent or expired.
// Expired rows are deleted lazily.
func (s *SQLiteStore) Get(userID string) (*Action, error) {
	row := s.db.QueryRow(`
		SELECT intent, fields, mode, created_at, expires_at
		FROM pending WHERE user_id = ?`, userID)

	var (
		action    Action
		fields    string
		mode      string
		createdAt string
		expiresAt string
	)
	err := row.Scan(&action.Intent, &fields, &mode, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending action for %q: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(fields), &action.Fields); err != nil {
		return nil, fmt.Errorf("parse pending fields for %q: %w", userID, err)
	}
	action.Mode = Mode(mode)
	action.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	action.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)

	if action.Expired(time.Now()) {
		_ = s.Clear(userID)
		return nil, nil
	}
	return &action, nil
}

// Clear removes the pending action, if any.
func (s *SQLiteStore) Clear(userID string) error {
	if _, err := s.db.Exec("DELETE FROM pending WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear pending action for %q: %w", userID, err)
	}
	return nil
}
