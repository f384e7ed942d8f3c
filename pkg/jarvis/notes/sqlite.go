// Package notes – sqlite.go is the durable Store backed by the central
// jarvis.db. The "notes" table must already exist (created by
// assistant.OpenDatabase).
package notes

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore persists notes in the "notes" table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed note store using the shared DB.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// timeLayout is RFC3339 with fixed-width nanoseconds so that string order
// in the DB matches chronological order (RFC3339Nano trims trailing zeros,
// which breaks lexicographic comparison).
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Add inserts a note and trims the user's rows to the retention cap.
func (s *SQLiteStore) Add(userID, text string) (*Note, error) {
	note := &Note{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO notes (id, user_id, text, created_at)
		VALUES (?, ?, ?, ?)`,
		note.ID, userID, note.Text, note.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("save note for %q: %w", userID, err)
	}

	// Drop rows beyond the retention cap, oldest first.
	_, err = s.db.Exec(`
		DELETE FROM notes WHERE user_id = ? AND id NOT IN (
			SELECT id FROM notes WHERE user_id = ?
			ORDER BY created_at DESC LIMIT ?
		)`, userID, userID, maxPerUser)
	if err != nil {
		return nil, fmt.Errorf("trim notes for %q: %w", userID, err)
	}
	return note, nil
}

// List returns up to limit notes, newest first.
func (s *SQLiteStore) List(userID string, limit int) ([]*Note, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(`
		SELECT id, text, created_at FROM notes
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notes for %q: %w", userID, err)
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		var (
			n         Note
			createdAt string
		)
		if err := rows.Scan(&n.ID, &n.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, &n)
	}
	return out, rows.Err()
}
