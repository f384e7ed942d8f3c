// Package assistant – history.go keeps a short rolling conversation history
// per chat, used as context for the generation service.
package assistant

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// historyWindow is how many entries are kept and replayed per chat.
const historyWindow = 8

// historyTimeLayout is fixed-width so lexicographic order matches
// chronological order.
const historyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryEntry is one message in a chat's rolling history.
type HistoryEntry struct {
	Role string // "user" or "assistant"
	Text string
}

// HistoryStore persists the rolling per-chat history.
type HistoryStore interface {
	// Append records an entry and trims the chat to the window size.
	Append(chatID, role, text string) error

	// Recent returns up to limit entries for a chat, oldest first.
	Recent(chatID string, limit int) ([]HistoryEntry, error)
}

// ---------- In-memory implementation ----------

// MemoryHistory keeps history in process memory. Lost on restart.
type MemoryHistory struct {
	mu    sync.Mutex
	chats map[string][]HistoryEntry
}

// NewMemoryHistory creates an empty in-memory history store.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{chats: make(map[string][]HistoryEntry)}
}

func (h *MemoryHistory) Append(chatID, role, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := append(h.chats[chatID], HistoryEntry{Role: role, Text: text})
	if len(entries) > historyWindow {
		entries = entries[len(entries)-historyWindow:]
	}
	h.chats[chatID] = entries
	return nil
}

func (h *MemoryHistory) Recent(chatID string, limit int) ([]HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries := h.chats[chatID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// ---------- SQLite implementation ----------

// SQLiteHistory persists history in the shared jarvis.db.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory wraps an already-open database. The history table is
// created by OpenDatabase.
func NewSQLiteHistory(db *sql.DB) *SQLiteHistory {
	return &SQLiteHistory{db: db}
}

func (h *SQLiteHistory) Append(chatID, role, text string) error {
	now := time.Now().UTC().Format(historyTimeLayout)
	if _, err := h.db.Exec(
		`INSERT INTO history (chat_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		chatID, role, text, now,
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	// Trim to the window, oldest rows first.
	if _, err := h.db.Exec(
		`DELETE FROM history WHERE chat_id = ? AND id NOT IN (
			SELECT id FROM history WHERE chat_id = ? ORDER BY id DESC LIMIT ?
		)`,
		chatID, chatID, historyWindow,
	); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

func (h *SQLiteHistory) Recent(chatID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = historyWindow
	}
	rows, err := h.db.Query(
		`SELECT role, text FROM (
			SELECT id, role, text FROM history WHERE chat_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Role, &e.Text); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
