package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/channels"
	"github.com/mkotov/jarvis/pkg/jarvis/channels/telegram"
)

type fakeAPI struct {
	events chan *channels.Event
}

func (a *fakeAPI) HandleEvent(_ context.Context, ev *channels.Event) {
	a.events <- ev
}

func (a *fakeAPI) DebugState() any {
	return map[string]int{"dedup_window": 3}
}

func newTestServer(debugKey string) (*Server, *fakeAPI) {
	api := &fakeAPI{events: make(chan *channels.Event, 8)}
	ch := telegram.New(telegram.Config{Token: "test-token"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := New(Config{Address: ":0", DebugKey: debugKey}, ch, api, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.baseCtx = context.Background()
	s.started = time.Now()
	return s, api
}

const sampleUpdate = `{
	"update_id": 42,
	"message": {
		"message_id": 7,
		"from": {"id": 100},
		"chat": {"id": 200},
		"text": "hello"
	}
}`

func TestWebhookAcksImmediately(t *testing.T) {
	t.Parallel()
	s, api := newTestServer("")

	req := httptest.NewRequest(http.MethodPost, telegram.WebhookPath, strings.NewReader(sampleUpdate))
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("webhook must ack with 200, got %d", rec.Code)
	}

	select {
	case ev := <-api.events:
		if ev.Text != "hello" || ev.ChatID != "200" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("event never reached the handler")
	}
}

func TestWebhookAcksGarbage(t *testing.T) {
	t.Parallel()
	s, api := newTestServer("")

	req := httptest.NewRequest(http.MethodPost, telegram.WebhookPath, strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.handleWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("garbage must still be acked with 200, got %d", rec.Code)
	}

	select {
	case ev := <-api.events:
		t.Fatalf("garbage should not produce an event, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer("")

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("health should be 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected health body %q", rec.Body.String())
	}
}

func TestDebugStateRequiresKey(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer("sekrit")
	handler := s.keyMiddleware(s.handleDebugState)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/debug/state", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/state", nil)
	req.Header.Set("X-Debug-Key", "sekrit")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid key should pass, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dedup_window") {
		t.Errorf("state body missing snapshot: %q", rec.Body.String())
	}

	// Query parameter works too.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/debug/state?key=sekrit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("query key should pass, got %d", rec.Code)
	}
}

func TestDebugOpenWithoutKey(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer("")
	handler := s.keyMiddleware(s.handleDebugState)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/debug/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("no configured key should leave debug open, got %d", rec.Code)
	}
}
