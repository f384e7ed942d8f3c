// Package assistant – assistant.go is the conversation controller. It takes
// deduplicated channel events, runs them through the intent table and the
// pending-draft state machine, and produces replies: stored notes, scheduled
// reminders, or generated chat answers.
package assistant

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/channels"
	"github.com/mkotov/jarvis/pkg/jarvis/dedup"
	"github.com/mkotov/jarvis/pkg/jarvis/intent"
	"github.com/mkotov/jarvis/pkg/jarvis/llm"
	"github.com/mkotov/jarvis/pkg/jarvis/notes"
	"github.com/mkotov/jarvis/pkg/jarvis/pending"
	"github.com/mkotov/jarvis/pkg/jarvis/reminder"
)

// Action tokens carried in inline keyboard callbacks.
const (
	ActionSave   = "confirm:save"
	ActionEdit   = "confirm:edit"
	ActionCancel = "confirm:cancel"
)

// intentCreateNote names the note draft in the pending store.
const intentCreateNote = "create_note"

// draftTextField is the pending-store field holding the note body.
const draftTextField = "text"

// Deps are the collaborators the assistant drives. All are required except
// Scheduler, which may be nil when reminders are disabled.
type Deps struct {
	Sender    channels.Sender
	Generator llm.Generator
	Scheduler *reminder.Scheduler
	Notes     notes.Store
	Pending   pending.Store
	History   HistoryStore
}

// Assistant is the conversation controller. One instance serves all users;
// events for the same user are serialized, different users proceed in
// parallel.
type Assistant struct {
	cfg    *Config
	deps   Deps
	window *dedup.Window
	logger *slog.Logger

	lockMu    sync.Mutex
	userLocks map[string]*sync.Mutex

	rateMu   sync.Mutex
	lastSeen map[string]time.Time

	// now is swappable in tests.
	now func() time.Time
}

// New creates the assistant.
func New(cfg *Config, deps Deps, logger *slog.Logger) *Assistant {
	return &Assistant{
		cfg:       cfg,
		deps:      deps,
		window:    dedup.NewWindow(cfg.DedupCapacity),
		logger:    logger.With("component", "assistant"),
		userLocks: make(map[string]*sync.Mutex),
		lastSeen:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// Stats is a point-in-time snapshot for the debug endpoint.
type Stats struct {
	DedupWindow      int `json:"dedup_window"`
	PendingReminders int `json:"pending_reminders"`
}

// Stats reports internal counters.
func (a *Assistant) Stats() Stats {
	s := Stats{DedupWindow: a.window.Len()}
	if a.deps.Scheduler != nil {
		if n, err := a.deps.Scheduler.Pending(); err == nil {
			s.PendingReminders = n
		}
	}
	return s
}

// DebugState is the gateway's snapshot hook.
func (a *Assistant) DebugState() any { return a.Stats() }

// DeliverReminder is the scheduler's notify function: it formats and sends
// a fired reminder into its chat.
func (a *Assistant) DeliverReminder(ctx context.Context, chatID, body string) error {
	msg := &channels.OutgoingMessage{Text: "⏰ Reminder: " + html.EscapeString(body)}
	return a.deps.Sender.Send(ctx, chatID, msg)
}

// HandleEvent processes one inbound event. It never returns an error;
// failures are logged and, where possible, reported to the user. Duplicate
// deliveries of the same event id are dropped.
func (a *Assistant) HandleEvent(ctx context.Context, ev *channels.Event) {
	if ev == nil {
		return
	}
	if ev.ID != "" && a.window.Seen(ev.ID) {
		a.logger.Debug("duplicate event dropped", "event_id", ev.ID)
		return
	}

	lock := a.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	if ev.IsCallback() {
		a.handleCallback(ctx, ev)
		return
	}
	a.handleMessage(ctx, ev)
}

// ---------- Messages ----------

func (a *Assistant) handleMessage(ctx context.Context, ev *channels.Event) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	if !a.allowMessage(ev.UserID) {
		a.logger.Debug("rate limited", "user_id", ev.UserID)
		return
	}

	// Reminder commands win over everything, including an editing draft.
	// The draft stays pending and the user can come back to it.
	if intent.IsReminderCommand(text) {
		a.handleReminderCommand(ctx, ev, text)
		return
	}

	act, err := a.deps.Pending.Get(ev.UserID)
	if err != nil {
		a.logger.Error("pending lookup failed", "user_id", ev.UserID, "error", err)
	}
	if act != nil && act.Mode == pending.ModeEditing {
		a.replaceDraft(ctx, ev, act, text)
		return
	}

	it := intent.Classify(text)
	switch it.Kind {
	case intent.Start:
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: helpText})
	case intent.ListNotes:
		a.listNotes(ctx, ev)
	case intent.CreateNote:
		a.draftNote(ctx, ev, it.Payload)
	case intent.Chat:
		a.chat(ctx, ev, it.Payload)
	}
}

// draftNote stores a new note draft and asks for confirmation. An existing
// draft is overwritten; one draft per user.
func (a *Assistant) draftNote(ctx context.Context, ev *channels.Event, text string) {
	act := &pending.Action{
		Intent: intentCreateNote,
		Fields: map[string]string{draftTextField: text},
		Mode:   pending.ModeDraft,
	}
	if err := a.deps.Pending.Set(ev.UserID, act); err != nil {
		a.logger.Error("store draft failed", "user_id", ev.UserID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}
	a.send(ctx, ev.ChatID, draftPreview(text))
}

// replaceDraft handles text arriving while the draft is in editing mode: the
// text becomes the new draft body and the confirmation round restarts.
func (a *Assistant) replaceDraft(ctx context.Context, ev *channels.Event, act *pending.Action, text string) {
	if act.Fields == nil {
		act.Fields = make(map[string]string)
	}
	act.Fields[draftTextField] = text
	act.Mode = pending.ModeDraft
	if err := a.deps.Pending.Set(ev.UserID, act); err != nil {
		a.logger.Error("replace draft failed", "user_id", ev.UserID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}
	a.send(ctx, ev.ChatID, draftPreview(text))
}

func (a *Assistant) listNotes(ctx context.Context, ev *channels.Event) {
	list, err := a.deps.Notes.List(ev.UserID, notes.DefaultListLimit)
	if err != nil {
		a.logger.Error("list notes failed", "user_id", ev.UserID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}
	if len(list) == 0 {
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: noNotesText})
		return
	}

	var b strings.Builder
	b.WriteString("📝 Your latest notes:\n")
	for i, n := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, html.EscapeString(n.Text))
	}
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: strings.TrimRight(b.String(), "\n")})
}

// ---------- Reminders ----------

func (a *Assistant) handleReminderCommand(ctx context.Context, ev *channels.Event, text string) {
	if a.deps.Scheduler == nil {
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: remindersDisabledText})
		return
	}

	it := intent.Classify(text)
	switch it.Kind {
	case intent.ListReminders:
		a.listReminders(ctx, ev)
	case intent.DeleteReminder:
		a.deleteReminder(ctx, ev, it.Payload)
	case intent.CreateReminder:
		a.createReminder(ctx, ev, text)
	}
}

func (a *Assistant) createReminder(ctx context.Context, ev *channels.Event, text string) {
	now := a.now()
	r, ok := intent.ParseReminder(text, now)
	if !ok {
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: reminderUsageText})
		return
	}

	id, err := a.deps.Scheduler.Schedule(ev.ChatID, r.Body, r.FireAt)
	if err != nil {
		a.logger.Error("schedule reminder failed", "chat_id", ev.ChatID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}

	wait := r.FireAt.Sub(now).Round(time.Second)
	reply := fmt.Sprintf("✅ Ok. Will remind in %s: %s\n(ID: %s)", wait, html.EscapeString(r.Body), id)
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: reply})
}

func (a *Assistant) listReminders(ctx context.Context, ev *channels.Event) {
	entries, err := a.deps.Scheduler.List(ev.ChatID)
	if err != nil {
		a.logger.Error("list reminders failed", "chat_id", ev.ChatID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}
	if len(entries) == 0 {
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: noRemindersText})
		return
	}

	now := a.now()
	var b strings.Builder
	b.WriteString("⏰ Scheduled reminders:\n")
	for i, e := range entries {
		wait := e.FireAt.Sub(now).Round(time.Second)
		fmt.Fprintf(&b, "%d. in %s — %s (ID: %s)\n", i+1, wait, html.EscapeString(e.Body), e.ID)
	}
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: strings.TrimRight(b.String(), "\n")})
}

func (a *Assistant) deleteReminder(ctx context.Context, ev *channels.Event, id string) {
	ok, err := a.deps.Scheduler.Delete(ev.ChatID, id)
	if err != nil {
		a.logger.Error("delete reminder failed", "chat_id", ev.ChatID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}
	if !ok {
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: "No reminder with that ID."})
		return
	}
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: "🗑 Reminder deleted."})
}

// ---------- Callbacks ----------

func (a *Assistant) handleCallback(ctx context.Context, ev *channels.Event) {
	// Ack first so the platform stops the button spinner, whatever happens
	// next.
	if err := a.deps.Sender.AckCallback(ctx, ev.CallbackID); err != nil {
		a.logger.Warn("ack callback failed", "callback_id", ev.CallbackID, "error", err)
	}

	act, err := a.deps.Pending.Get(ev.UserID)
	if err != nil {
		a.logger.Error("pending lookup failed", "user_id", ev.UserID, "error", err)
	}

	switch ev.Action {
	case ActionSave:
		a.savePending(ctx, ev, act)
	case ActionEdit:
		if act == nil {
			a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: nothingToEditText})
			return
		}
		act.Mode = pending.ModeEditing
		if err := a.deps.Pending.Set(ev.UserID, act); err != nil {
			a.logger.Error("mark editing failed", "user_id", ev.UserID, "error", err)
			a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
			return
		}
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: editPromptText})
	case ActionCancel:
		if act == nil {
			a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: nothingToCancelText})
			return
		}
		if err := a.deps.Pending.Clear(ev.UserID); err != nil {
			a.logger.Error("clear pending failed", "user_id", ev.UserID, "error", err)
		}
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: cancelledText})
	default:
		a.logger.Warn("unknown callback action", "action", ev.Action)
	}
}

func (a *Assistant) savePending(ctx context.Context, ev *channels.Event, act *pending.Action) {
	if act == nil || act.Intent != intentCreateNote {
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: nothingToSaveText})
		return
	}

	text := act.Fields[draftTextField]
	if _, err := a.deps.Notes.Add(ev.UserID, text); err != nil {
		a.logger.Error("save note failed", "user_id", ev.UserID, "error", err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: storageErrorText})
		return
	}
	if err := a.deps.Pending.Clear(ev.UserID); err != nil {
		a.logger.Error("clear pending failed", "user_id", ev.UserID, "error", err)
	}
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: "✅ Saved: " + html.EscapeString(text)})
}

// ---------- Chat ----------

func (a *Assistant) chat(ctx context.Context, ev *channels.Event, text string) {
	if err := a.deps.Sender.SendTyping(ctx, ev.ChatID); err != nil {
		a.logger.Debug("send typing failed", "chat_id", ev.ChatID, "error", err)
	}

	mode := intent.DetectMode(text)
	history, err := a.deps.History.Recent(ev.ChatID, historyWindow)
	if err != nil {
		a.logger.Error("load history failed", "chat_id", ev.ChatID, "error", err)
	}
	if err := a.deps.History.Append(ev.ChatID, "user", text); err != nil {
		a.logger.Error("append history failed", "chat_id", ev.ChatID, "error", err)
	}

	prompt := buildPrompt(a.cfg.Name, mode, history, text)
	out := llm.Ask(ctx, a.deps.Generator, prompt, maxTokensFor(mode))
	if out.Status != llm.StatusOK {
		a.logger.Error("generation failed", "chat_id", ev.ChatID,
			"status", string(out.Status), "error", out.Err)
		a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: apologyText})
		return
	}

	if mode == intent.ModeLinkOnly {
		a.replyLinkOnly(ctx, ev, text, out.Reply.Text)
		return
	}

	answer := scrubSelfReferences(out.Reply.Text)
	if answer == "" {
		answer = "…"
	}
	if err := a.deps.History.Append(ev.ChatID, "assistant", answer); err != nil {
		a.logger.Error("append history failed", "chat_id", ev.ChatID, "error", err)
	}
	// Model output is as untrusted as user text: a bare "<" would make the
	// platform reject the whole message in HTML parse mode.
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: html.EscapeString(answer)})
}

// replyLinkOnly reduces the answer to a single URL: take the first URL from
// the reply, retry once with a strict prompt, then fall back to a search
// link built from the request.
func (a *Assistant) replyLinkOnly(ctx context.Context, ev *channels.Event, userText, answer string) {
	link := extractFirstURL(answer)
	if link == "" {
		retry := llm.Ask(ctx, a.deps.Generator, strictLinkPrompt(userText), tokensLinkOnly)
		if retry.Status == llm.StatusOK {
			link = extractFirstURL(retry.Reply.Text)
		}
	}
	if link == "" {
		link = searchFallbackURL(userText)
	}

	if err := a.deps.History.Append(ev.ChatID, "assistant", link); err != nil {
		a.logger.Error("append history failed", "chat_id", ev.ChatID, "error", err)
	}
	// Escaped for HTML parse mode; &amp; in a query string renders back as &.
	a.send(ctx, ev.ChatID, &channels.OutgoingMessage{Text: html.EscapeString(link), ShowPreview: true})
}

// ---------- Internal ----------

// send delivers a reply and logs failures; there is nobody upstream to
// return them to.
func (a *Assistant) send(ctx context.Context, chatID string, msg *channels.OutgoingMessage) {
	if err := a.deps.Sender.Send(ctx, chatID, msg); err != nil {
		a.logger.Error("send failed", "chat_id", chatID, "error", err)
	}
}

// userLock returns the per-user mutex, creating it on first use.
func (a *Assistant) userLock(userID string) *sync.Mutex {
	a.lockMu.Lock()
	defer a.lockMu.Unlock()
	lock, ok := a.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		a.userLocks[userID] = lock
	}
	return lock
}

// allowMessage applies the per-user rate limit. Callbacks are exempt; only
// text messages pass through here.
func (a *Assistant) allowMessage(userID string) bool {
	if a.cfg.RateLimitMs <= 0 {
		return true
	}
	interval := time.Duration(a.cfg.RateLimitMs) * time.Millisecond

	a.rateMu.Lock()
	defer a.rateMu.Unlock()
	now := a.now()
	if last, ok := a.lastSeen[userID]; ok && now.Sub(last) < interval {
		return false
	}
	a.lastSeen[userID] = now
	return true
}

// draftPreview renders the confirmation round for a note draft.
func draftPreview(text string) *channels.OutgoingMessage {
	return &channels.OutgoingMessage{
		Text: "📝 Note draft:\n" + html.EscapeString(text) + "\n\nSave it?",
		Choices: []channels.Choice{
			{Label: "💾 Save", Data: ActionSave},
			{Label: "✏️ Edit", Data: ActionEdit},
			{Label: "✖️ Cancel", Data: ActionCancel},
		},
	}
}

// Canned replies.
const (
	helpText = `👋 I'm Jarvis. Here is what I can do:

📝 Notes
  note: buy milk — draft a note (confirm with the buttons)
  my notes — show the latest notes

⏰ Reminders
  remind in 10 minutes buy milk
  remind tomorrow at 09:00 call the bank
  reminders — list scheduled reminders
  delete reminder <id>

Anything else — just ask.`

	reminderUsageText = "I could not parse that reminder. Try:\n" +
		"  remind in 10 minutes buy milk\n" +
		"  remind tomorrow at 09:00 call the bank"

	apologyText = "I can't answer right now. Please try again in a moment."

	storageErrorText = "Something went wrong on my side. Please try again."

	remindersDisabledText = "Reminders are not available right now."

	noNotesText     = "No notes yet. Start one with: note: your text"
	noRemindersText = "No reminders scheduled."

	nothingToSaveText   = "Nothing to save. The draft may have expired."
	nothingToEditText   = "Nothing to edit. The draft may have expired."
	nothingToCancelText = "Nothing to cancel."

	editPromptText = "✏️ Send the new text for the note."

	cancelledText = "✖️ Cancelled."
)
