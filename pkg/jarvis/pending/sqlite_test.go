package pending

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// openTestDB creates a throwaway DB with the pending table.
// Mirrors the DDL in assistant.OpenDatabase.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS pending (
			user_id    TEXT PRIMARY KEY,
			intent     TEXT NOT NULL,
			fields     TEXT NOT NULL DEFAULT '{}',
			mode       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSQLiteStore(openTestDB(t), time.Hour)

	if got, err := s.Get("u1"); err != nil || got != nil {
		t.Fatalf("Get on empty store = %v, %v; want nil, nil", got, err)
	}

	action := &Action{
		Intent: "create_note",
		Fields: map[string]string{"text": "buy milk"},
		Mode:   ModeDraft,
	}
	if err := s.Set("u1", action); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Intent != "create_note" || got.Fields["text"] != "buy milk" {
		t.Fatalf("Get = %+v, want stored draft", got)
	}

	// Overwrite with editing mode.
	action.Mode = ModeEditing
	if err := s.Set("u1", action); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get("u1")
	if got.Mode != ModeEditing {
		t.Errorf("mode = %q, want %q", got.Mode, ModeEditing)
	}

	if err := s.Clear("u1"); err != nil {
		t.Fatal(err)
	}
	if got, _ = s.Get("u1"); got != nil {
		t.Errorf("Get after Clear = %+v, want nil", got)
	}
}

func TestSQLiteStoreLazyExpiry(t *testing.T) {
	t.Parallel()

	s := NewSQLiteStore(openTestDB(t), 10*time.Millisecond)
	if err := s.Set("u1", &Action{Intent: "create_note", Mode: ModeDraft}); err != nil {
		t.Fatal(err)
	}

	time.Sleep(25 * time.Millisecond)

	got, err := s.Get("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Get after TTL = %+v, want nil", got)
	}
}
