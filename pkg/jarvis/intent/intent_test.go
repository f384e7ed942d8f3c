package intent

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		kind    Kind
		payload string
	}{
		// Empty input
		{"", Empty, ""},
		{"   ", Empty, ""},
		{"\n\t", Empty, ""},

		// Start
		{"/start", Start, ""},
		{"/START", Start, ""},
		{"/help", Start, ""},

		// List notes
		{"notes", ListNotes, ""},
		{"/notes", ListNotes, ""},
		{"заметки", ListNotes, ""},
		{"Notes", ListNotes, ""},
		{"my notes", ListNotes, ""}, // as advertised in the help text
		{"мои заметки", ListNotes, ""},

		// Create note
		{"note: buy milk", CreateNote, "buy milk"},
		{"Note: buy milk", CreateNote, "buy milk"},
		{"заметка: купить молоко", CreateNote, "купить молоко"},
		{"note: a:b:c", CreateNote, "a:b:c"},
		{"note:   spaced   ", CreateNote, "spaced"},

		// Empty note degrades to chat with the full original text.
		{"note:", Chat, "note:"},
		{"note:   ", Chat, "note:"},

		// List reminders
		{"reminders", ListReminders, ""},
		{"my reminders", ListReminders, ""},
		{"напоминания", ListReminders, ""},

		// Delete reminder
		{"delete reminder 42", DeleteReminder, "42"},
		{"remove reminder abc-123", DeleteReminder, "abc-123"},
		{"удали напоминание 7", DeleteReminder, "7"},

		// Create reminder (payload keeps the whole command)
		{"remind in 10 minutes buy milk", CreateReminder, "remind in 10 minutes buy milk"},
		{"Remind tomorrow at 09:00 call bank", CreateReminder, "Remind tomorrow at 09:00 call bank"},
		{"напомни через 5 минут чай", CreateReminder, "напомни через 5 минут чай"},
		{"remind", CreateReminder, "remind"}, // malformed, grammar rejects later

		// Chat fallback
		{"what's the weather", Chat, "what's the weather"},
		{"  hello  ", Chat, "hello"},
		{"notebook", Chat, "notebook"}, // not "note:" prefix
	}

	for _, tt := range tests {
		got := Classify(tt.input)
		if got.Kind != tt.kind {
			t.Errorf("Classify(%q) kind = %q, want %q", tt.input, got.Kind, tt.kind)
		}
		if got.Payload != tt.payload {
			t.Errorf("Classify(%q) payload = %q, want %q", tt.input, got.Payload, tt.payload)
		}
	}
}

func TestClassifyChatIdempotent(t *testing.T) {
	t.Parallel()

	// Classifying the payload of a Chat result yields Chat again with the
	// same payload (echo stability).
	first := Classify("  tell me a joke  ")
	if first.Kind != Chat {
		t.Fatalf("expected chat, got %q", first.Kind)
	}
	second := Classify(first.Payload)
	if second.Kind != Chat || second.Payload != first.Payload {
		t.Errorf("re-classify = %+v, want %+v", second, first)
	}
}

func TestIsReminderCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"remind in 5 minutes tea", true},
		{"reminders", true},
		{"delete reminder 3", true},
		{"note: remind me", false},
		{"hello", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsReminderCommand(tt.input); got != tt.want {
			t.Errorf("IsReminderCommand(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDetectMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Mode
	}{
		{"give me a link to the Go spec", ModeLinkOnly},
		{"дай ссылку на документацию", ModeLinkOnly},
		{"explain how channels work", ModeDetailed},
		{"расскажи про горутины", ModeDetailed},
		{"what time is it", ModeNormal},
		{"", ModeNormal},
	}
	for _, tt := range tests {
		if got := DetectMode(tt.input); got != tt.want {
			t.Errorf("DetectMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
