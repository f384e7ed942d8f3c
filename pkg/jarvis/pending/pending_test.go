package pending

import (
	"testing"
	"time"
)

func TestMemoryStoreSetGetClear(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)

	got, err := s.Get("u1")
	if err != nil || got != nil {
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

	got, err = s.Get("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Fields["text"] != "buy milk" || got.Mode != ModeDraft {
		t.Fatalf("Get = %+v, want the stored draft", got)
	}
	if got.CreatedAt.IsZero() || got.ExpiresAt.IsZero() {
		t.Error("Set did not stamp CreatedAt/ExpiresAt")
	}

	// Other users are independent.
	if other, _ := s.Get("u2"); other != nil {
		t.Errorf("Get(u2) = %+v, want nil", other)
	}

	if err := s.Clear("u1"); err != nil {
		t.Fatal(err)
	}
	if got, _ = s.Get("u1"); got != nil {
		t.Errorf("Get after Clear = %+v, want nil", got)
	}

	// Clearing an absent entry is a no-op, not an error.
	if err := s.Clear("u1"); err != nil {
		t.Errorf("Clear on empty = %v, want nil", err)
	}
}

func TestMemoryStoreOverwriteResetsTTL(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(time.Hour)

	first := &Action{Intent: "create_note", Fields: map[string]string{"text": "v1"}, Mode: ModeDraft}
	if err := s.Set("u1", first); err != nil {
		t.Fatal(err)
	}
	firstExpiry := first.ExpiresAt

	time.Sleep(5 * time.Millisecond)

	second := &Action{Intent: "create_note", Fields: map[string]string{"text": "v2"}, Mode: ModeEditing}
	if err := s.Set("u1", second); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get("u1")
	if got.Fields["text"] != "v2" || got.Mode != ModeEditing {
		t.Fatalf("overwrite lost: %+v", got)
	}
	if !got.ExpiresAt.After(firstExpiry) {
		t.Error("overwrite did not reset TTL")
	}
}

func TestMemoryStoreLazyExpiry(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(10 * time.Millisecond)
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

func TestActionExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := &Action{ExpiresAt: now.Add(time.Minute)}
	if a.Expired(now) {
		t.Error("future expiry reported as expired")
	}
	if !a.Expired(now.Add(2 * time.Minute)) {
		t.Error("past expiry not reported")
	}
	// Zero ExpiresAt never expires (callers always stamp it via Set).
	if (&Action{}).Expired(now) {
		t.Error("zero expiry reported as expired")
	}
}
