// Package intent classifies raw user text into structured intents.
// Classification is a pure ordered rule chain: the first rule that matches
// wins, so the documented command priority lives in one place (the rules
// table) instead of nested conditionals scattered over the handler.
//
// Commands are recognized in English and Russian (the bot's home locale).
package intent

import (
	"regexp"
	"strings"
)

// Kind identifies the classified purpose of a message.
type Kind string

const (
	// Empty means the text was empty after trimming.
	Empty Kind = "empty"

	// Start is the /start help trigger.
	Start Kind = "start"

	// ListNotes shows the user's saved notes.
	ListNotes Kind = "list_notes"

	// CreateNote starts a note draft ("note: buy milk").
	CreateNote Kind = "create_note"

	// ListReminders shows pending reminders for the chat.
	ListReminders Kind = "list_reminders"

	// DeleteReminder cancels a scheduled reminder by id.
	DeleteReminder Kind = "delete_reminder"

	// CreateReminder is a reminder command; the payload still needs the
	// reminder grammar (ParseReminder) to extract time and body.
	CreateReminder Kind = "create_reminder"

	// Chat is the fallback: free-form text answered by the LLM.
	Chat Kind = "chat"
)

// Intent is the result of classifying one message.
type Intent struct {
	Kind Kind

	// Payload depends on Kind: the note text for CreateNote, the reminder
	// id for DeleteReminder, the full trimmed command for CreateReminder,
	// and the full trimmed text for Chat.
	Payload string
}

// matcher inspects the trimmed text (and its lowercase form) and returns
// an intent if the rule applies.
type matcher func(trimmed, lower string) (Intent, bool)

// rules is the ordered intent table. Order is part of the command grammar:
// exact-match commands come before prefix commands, and "reminders" must be
// checked before the "remind" prefix would swallow it.
var rules = []matcher{
	matchStart,
	matchListNotes,
	matchCreateNote,
	matchListReminders,
	matchDeleteReminder,
	matchCreateReminder,
}

// Classify maps raw text to an intent. It is pure and total: nil-equivalent
// and empty input map to Empty, anything unrecognized falls through to Chat
// carrying the trimmed text, and no input ever panics.
func Classify(raw string) Intent {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Intent{Kind: Empty}
	}

	lower := strings.ToLower(trimmed)
	for _, match := range rules {
		if it, ok := match(trimmed, lower); ok {
			return it
		}
	}
	return Intent{Kind: Chat, Payload: trimmed}
}

func matchStart(_, lower string) (Intent, bool) {
	if lower == "/start" || lower == "/help" {
		return Intent{Kind: Start}, true
	}
	return Intent{}, false
}

func matchListNotes(_, lower string) (Intent, bool) {
	switch lower {
	case "/notes", "notes", "my notes", "заметки", "мои заметки":
		return Intent{Kind: ListNotes}, true
	}
	return Intent{}, false
}

// notePrefixes are the note-command triggers; the note text is everything
// after the first colon.
var notePrefixes = []string{"note:", "заметка:"}

func matchCreateNote(trimmed, lower string) (Intent, bool) {
	for _, prefix := range notePrefixes {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		body := strings.TrimSpace(trimmed[strings.Index(trimmed, ":")+1:])
		if body == "" {
			// An empty note is not a note. Hand the full text to chat
			// rather than dropping the message.
			return Intent{Kind: Chat, Payload: trimmed}, true
		}
		return Intent{Kind: CreateNote, Payload: body}, true
	}
	return Intent{}, false
}

func matchListReminders(_, lower string) (Intent, bool) {
	switch lower {
	case "/reminders", "reminders", "my reminders", "напоминания", "мои напоминания":
		return Intent{Kind: ListReminders}, true
	}
	return Intent{}, false
}

var deleteReminderRe = regexp.MustCompile(`^(?:delete|remove|удали)\s+(?:reminder|напоминание)\s+(\S+)$`)

func matchDeleteReminder(_, lower string) (Intent, bool) {
	if m := deleteReminderRe.FindStringSubmatch(lower); m != nil {
		return Intent{Kind: DeleteReminder, Payload: m[1]}, true
	}
	return Intent{}, false
}

// reminderPrefixes trigger the reminder grammar. The full trimmed command is
// kept as payload so ParseReminder sees the whole surface form.
var reminderPrefixes = []string{"remind", "напомни"}

func matchCreateReminder(trimmed, lower string) (Intent, bool) {
	for _, prefix := range reminderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return Intent{Kind: CreateReminder, Payload: trimmed}, true
		}
	}
	return Intent{}, false
}

// IsReminderCommand reports whether the text is a reminder command of any
// form. Used by the conversation flow to give reminder commands priority
// over the note-editing resume.
func IsReminderCommand(raw string) bool {
	switch Classify(raw).Kind {
	case CreateReminder, ListReminders, DeleteReminder:
		return true
	}
	return false
}
