package assistant

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Mirrors the DDL in OpenDatabase.
const historyTestDDL = `
CREATE TABLE IF NOT EXISTS history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id    TEXT NOT NULL,
    role       TEXT NOT NULL,
    text       TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_chat ON history(chat_id, id);
`

func historyStores(t *testing.T) map[string]HistoryStore {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(historyTestDDL); err != nil {
		t.Fatal(err)
	}

	return map[string]HistoryStore{
		"memory": NewMemoryHistory(),
		"sqlite": NewSQLiteHistory(db),
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Append("chat-1", "user", "hello"); err != nil {
				t.Fatal(err)
			}
			if err := store.Append("chat-1", "assistant", "hi"); err != nil {
				t.Fatal(err)
			}
			if err := store.Append("chat-2", "user", "other chat"); err != nil {
				t.Fatal(err)
			}

			got, err := store.Recent("chat-1", historyWindow)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(got))
			}
			if got[0].Role != "user" || got[0].Text != "hello" {
				t.Errorf("oldest first expected, got %+v", got[0])
			}
			if got[1].Role != "assistant" || got[1].Text != "hi" {
				t.Errorf("unexpected second entry %+v", got[1])
			}
		})
	}
}

func TestHistoryTrimsToWindow(t *testing.T) {
	t.Parallel()

	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < historyWindow+5; i++ {
				if err := store.Append("chat-1", "user", fmt.Sprintf("msg %d", i)); err != nil {
					t.Fatal(err)
				}
			}

			got, err := store.Recent("chat-1", historyWindow+10)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != historyWindow {
				t.Fatalf("expected window of %d, got %d", historyWindow, len(got))
			}
			if got[0].Text != "msg 5" {
				t.Errorf("oldest surviving entry should be msg 5, got %q", got[0].Text)
			}
			if got[len(got)-1].Text != fmt.Sprintf("msg %d", historyWindow+4) {
				t.Errorf("newest entry wrong: %q", got[len(got)-1].Text)
			}
		})
	}
}

func TestHistoryEmptyChat(t *testing.T) {
	t.Parallel()

	for name, store := range historyStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Recent("nobody", historyWindow)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Errorf("expected empty history, got %d entries", len(got))
			}
		})
	}
}
