package telegram

import (
	"testing"
)

func TestParseUpdateMessage(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"update_id": 12345,
		"message": {
			"message_id": 7,
			"from": {"id": 111},
			"chat": {"id": 222},
			"text": "note: buy milk"
		}
	}`)

	ev, err := ParseUpdate(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev == nil {
		t.Fatal("event is nil")
	}
	if ev.ID != "12345" || ev.ChatID != "222" || ev.UserID != "111" {
		t.Errorf("ids = %s/%s/%s", ev.ID, ev.ChatID, ev.UserID)
	}
	if ev.Text != "note: buy milk" {
		t.Errorf("text = %q", ev.Text)
	}
	if ev.IsCallback() {
		t.Error("message event reported as callback")
	}
}

func TestParseUpdateCallback(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"update_id": 12346,
		"callback_query": {
			"id": "cb-1",
			"from": {"id": 111},
			"message": {"message_id": 7, "chat": {"id": 222}},
			"data": "confirm:save"
		}
	}`)

	ev, err := ParseUpdate(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev == nil {
		t.Fatal("event is nil")
	}
	if !ev.IsCallback() {
		t.Fatal("callback event not recognized")
	}
	if ev.Action != "confirm:save" || ev.CallbackID != "cb-1" {
		t.Errorf("action = %q, callback id = %q", ev.Action, ev.CallbackID)
	}
	if ev.ChatID != "222" || ev.UserID != "111" {
		t.Errorf("ids = %s/%s", ev.ChatID, ev.UserID)
	}
}

func TestParseUpdateEditedMessage(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"update_id": 12347,
		"edited_message": {
			"message_id": 8,
			"from": {"id": 111},
			"chat": {"id": 222},
			"text": "edited text"
		}
	}`)

	ev, err := ParseUpdate(body)
	if err != nil {
		t.Fatal(err)
	}
	if ev == nil || ev.Text != "edited text" {
		t.Fatalf("event = %+v, want edited text treated as message", ev)
	}
}

func TestParseUpdateUnsupported(t *testing.T) {
	t.Parallel()

	// Update types we don't handle parse to nil without error.
	for _, body := range []string{
		`{"update_id": 1}`,
		`{"update_id": 2, "message": {"message_id": 1, "chat": {"id": 3}}}`,
		`{"update_id": 3, "message": {"message_id": 1, "from": {"id": 4}, "chat": {"id": 3}, "text": ""}}`,
	} {
		ev, err := ParseUpdate([]byte(body))
		if err != nil {
			t.Errorf("ParseUpdate(%s) error: %v", body, err)
		}
		if ev != nil {
			t.Errorf("ParseUpdate(%s) = %+v, want nil", body, ev)
		}
	}

	// Garbage is an error.
	if _, err := ParseUpdate([]byte("not json")); err == nil {
		t.Error("garbage body parsed without error")
	}
}
