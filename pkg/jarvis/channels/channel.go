// Package channels defines the types and interfaces between the assistant
// core and a messaging platform. The platform side parses inbound webhook
// payloads into Events and implements Sender for outbound replies; the
// assistant never sees platform wire formats.
package channels

import (
	"context"
	"fmt"
)

// Choice is one inline action button offered with a message.
type Choice struct {
	// Label is the visible button text.
	Label string

	// Data is the opaque action token returned in the callback event.
	Data string
}

// OutgoingMessage is a reply to be sent to a chat.
type OutgoingMessage struct {
	// Text is the message body (platform markup allowed).
	Text string

	// Choices, when set, attach an inline action set to the message.
	Choices []Choice

	// ShowPreview enables link previews (off by default).
	ShowPreview bool
}

// Event is one inbound webhook delivery: either a user text message or a
// confirm/edit/cancel callback from an inline action set.
type Event struct {
	// ID is the platform's delivery id, used for deduplication.
	ID string

	// ChatID is the conversation to reply into.
	ChatID string

	// UserID is the sender.
	UserID string

	// Text is the message text (messages only).
	Text string

	// Action is the action token (callbacks only).
	Action string

	// CallbackID is the platform callback id to acknowledge (callbacks only).
	CallbackID string
}

// IsCallback reports whether the event is an action callback.
func (e *Event) IsCallback() bool { return e.CallbackID != "" }

// Sender sends replies back to the messaging platform.
type Sender interface {
	// Name returns the channel identifier (e.g. "telegram").
	Name() string

	// Send sends a message to the chat.
	Send(ctx context.Context, chatID string, msg *OutgoingMessage) error

	// SendTyping shows a typing indicator while a slow reply is prepared.
	// Best effort; implementations may no-op.
	SendTyping(ctx context.Context, chatID string) error

	// AckCallback acknowledges an action callback so the platform stops
	// showing a spinner on the button.
	AckCallback(ctx context.Context, callbackID string) error
}

// ErrSendFailed wraps outbound delivery failures.
var ErrSendFailed = fmt.Errorf("failed to send message")
