package dedup

import (
	"fmt"
	"testing"
)

func TestSeen(t *testing.T) {
	t.Parallel()

	w := NewWindow(10)

	if w.Seen("a") {
		t.Error("first Seen(a) = true, want false")
	}
	if !w.Seen("a") {
		t.Error("second Seen(a) = false, want true")
	}
	if w.Seen("b") {
		t.Error("first Seen(b) = true, want false")
	}
}

func TestEvictionIsInsertionOrder(t *testing.T) {
	t.Parallel()

	w := NewWindow(3)
	for _, id := range []string{"1", "2", "3"} {
		w.Seen(id)
	}

	// A duplicate hit must not refresh "1"'s position in the window.
	if !w.Seen("1") {
		t.Fatal("Seen(1) = false after insert")
	}

	// Inserting "4" evicts the oldest ("1") even though "1" was the most
	// recently checked id. Window is now {2, 3, 4}.
	w.Seen("4")
	if !w.Seen("2") {
		t.Error("id 2 unexpectedly evicted")
	}
	if !w.Seen("3") {
		t.Error("id 3 unexpectedly evicted")
	}
	if w.Seen("1") {
		t.Error("evicted id 1 still reported as seen")
	}
}

func TestCapacityBound(t *testing.T) {
	t.Parallel()

	w := NewWindow(5)
	for i := 0; i < 100; i++ {
		w.Seen(fmt.Sprintf("id-%d", i))
	}
	if w.Len() != 5 {
		t.Errorf("Len() = %d, want 5", w.Len())
	}
}

func TestDefaultCapacity(t *testing.T) {
	t.Parallel()

	w := NewWindow(0)
	for i := 0; i < DefaultCapacity+50; i++ {
		w.Seen(fmt.Sprintf("id-%d", i))
	}
	if w.Len() != DefaultCapacity {
		t.Errorf("Len() = %d, want %d", w.Len(), DefaultCapacity)
	}
}
