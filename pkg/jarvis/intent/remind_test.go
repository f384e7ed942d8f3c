package intent

import (
	"testing"
	"time"
)

func TestParseReminderRelative(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

	tests := []struct {
		input string
		delay time.Duration
		body  string
		ok    bool
	}{
		{"remind in 10 minutes buy milk", 10 * time.Minute, "buy milk", true},
		{"remind in 30 seconds stretch", 30 * time.Second, "stretch", true},
		{"remind in 2 hours call mom", 2 * time.Hour, "call mom", true},
		{"Remind In 1 Minute tea", time.Minute, "tea", true},
		{"remind in 5min water", 5 * time.Minute, "water", true},

		// Russian forms
		{"напомни через 10 минут купить воду", 10 * time.Minute, "купить воду", true},
		{"напомни через 1 час оплатить интернет", time.Hour, "оплатить интернет", true},
		{"напомни через 45 секунд чай", 45 * time.Second, "чай", true},

		// Rejections
		{"remind in 0 minutes x", 0, "", false},
		{"remind in -5 minutes x", 0, "", false},
		{"remind in 10 fortnights x", 0, "", false},
		{"remind in 10 minutes", 0, "", false}, // no body
		{"remind me later", 0, "", false},
		{"buy milk in 10 minutes", 0, "", false},
		{"", 0, "", false},
	}

	for _, tt := range tests {
		got, ok := ParseReminder(tt.input, now)
		if ok != tt.ok {
			t.Errorf("ParseReminder(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if want := now.Add(tt.delay); !got.FireAt.Equal(want) {
			t.Errorf("ParseReminder(%q) fireAt = %v, want %v", tt.input, got.FireAt, want)
		}
		if got.Body != tt.body {
			t.Errorf("ParseReminder(%q) body = %q, want %q", tt.input, got.Body, tt.body)
		}
	}
}

func TestParseReminderTomorrow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 22, 45, 11, 500, time.Local)

	got, ok := ParseReminder("remind tomorrow at 09:05 call bank", now)
	if !ok {
		t.Fatal("expected match")
	}
	want := time.Date(2025, 3, 11, 9, 5, 0, 0, time.Local)
	if !got.FireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", got.FireAt, want)
	}
	if got.Body != "call bank" {
		t.Errorf("body = %q, want %q", got.Body, "call bank")
	}

	// Russian form.
	got, ok = ParseReminder("напомни завтра в 07:30 зарядка", now)
	if !ok {
		t.Fatal("expected match for russian form")
	}
	want = time.Date(2025, 3, 11, 7, 30, 0, 0, time.Local)
	if !got.FireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", got.FireAt, want)
	}

	// Month rollover.
	eom := time.Date(2025, 3, 31, 12, 0, 0, 0, time.Local)
	got, ok = ParseReminder("remind tomorrow at 08:00 rent", eom)
	if !ok {
		t.Fatal("expected match at month end")
	}
	want = time.Date(2025, 4, 1, 8, 0, 0, 0, time.Local)
	if !got.FireAt.Equal(want) {
		t.Errorf("fireAt = %v, want %v", got.FireAt, want)
	}
}

func TestParseReminderTomorrowRejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	for _, input := range []string{
		"remind tomorrow at 25:00 x",
		"remind tomorrow at 09:60 x",
		"remind tomorrow at 9:5 x",
		"remind tomorrow at 09:00",
		"remind tomorrow morning x",
	} {
		if _, ok := ParseReminder(input, now); ok {
			t.Errorf("ParseReminder(%q) matched, want reject", input)
		}
	}
}
