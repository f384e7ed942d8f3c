// Package reminder – sqlite_storage.go is the durable Storage backed by the
// central jarvis.db. The "reminders" table must already exist (created by
// assistant.OpenDatabase); its fire_at index is the due index.
package reminder

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SQLiteStorage persists reminders in the "reminders" table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a SQLite-backed reminder storage using the
// shared DB.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Put stores a new entry. FireAt is kept as unix milliseconds so the
// fire_at index answers "everything due by now" with a range scan.
func (s *SQLiteStorage) Put(e *Entry) error {
	_, err := s.db.Exec(`
		INSERT INTO reminders (id, channel, body, fire_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Channel, e.Body,
		e.FireAt.UnixMilli(),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save reminder %q: %w", e.ID, err)
	}
	return nil
}

// ClaimDue selects and deletes due entries in one transaction, so a
// concurrent poll or insert can never double-claim.
func (s *SQLiteStorage) ClaimDue(now time.Time, limit int) ([]*Entry, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT id, channel, body, fire_at, created_at FROM reminders
		WHERE fire_at <= ? ORDER BY fire_at`
	args := []any{now.UnixMilli()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select due reminders: %w", err)
	}
	due, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]any, len(due))
	holes := make([]string, len(due))
	for i, e := range due {
		ids[i] = e.ID
		holes[i] = "?"
	}
	_, err = tx.Exec(
		"DELETE FROM reminders WHERE id IN ("+strings.Join(holes, ",")+")", ids...)
	if err != nil {
		return nil, fmt.Errorf("claim due reminders: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return due, nil
}

// List returns the channel's entries ordered by fire time.
func (s *SQLiteStorage) List(channel string) ([]*Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, channel, body, fire_at, created_at FROM reminders
		WHERE channel = ? ORDER BY fire_at`, channel)
	if err != nil {
		return nil, fmt.Errorf("list reminders for %q: %w", channel, err)
	}
	return scanEntries(rows)
}

// Delete removes one entry owned by the channel.
func (s *SQLiteStorage) Delete(channel, id string) (bool, error) {
	res, err := s.db.Exec(
		"DELETE FROM reminders WHERE id = ? AND channel = ?", id, channel)
	if err != nil {
		return false, fmt.Errorf("delete reminder %q: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Count returns the number of live entries.
func (s *SQLiteStorage) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM reminders").Scan(&n); err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var (
			e         Entry
			fireAt    int64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Channel, &e.Body, &fireAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		e.FireAt = time.UnixMilli(fireAt)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, &e)
	}
	return out, rows.Err()
}
