// Package telegram implements the Telegram side of the assistant using the
// Bot API directly via HTTP — no external bot SDK.
//
// Inbound updates arrive over a webhook (registered with setWebhook at
// startup) and are parsed into channel events; outbound replies go through
// sendMessage with optional inline keyboards, answerCallbackQuery, and
// sendChatAction.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/channels"
)

// Config holds Telegram channel configuration.
type Config struct {
	// Token is the Telegram Bot API token (from @BotFather).
	Token string `yaml:"token"`

	// PublicURL is the externally reachable base URL of this service;
	// the webhook is registered at PublicURL + WebhookPath.
	PublicURL string `yaml:"public_url"`

	// ParseMode sets the parse mode for outgoing messages ("HTML" or
	// "Markdown"). Defaults to HTML.
	ParseMode string `yaml:"parse_mode"`
}

// WebhookPath is the route the webhook is registered under.
const WebhookPath = "/telegram"

// Telegram implements channels.Sender over the Bot API.
type Telegram struct {
	cfg     Config
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Telegram channel instance.
func New(cfg Config, logger *slog.Logger) *Telegram {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ParseMode == "" {
		cfg.ParseMode = "HTML"
	}
	return &Telegram{
		cfg:     cfg,
		baseURL: "https://api.telegram.org/bot" + cfg.Token,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "telegram"),
	}
}

// Name returns "telegram".
func (t *Telegram) Name() string { return "telegram" }

// Send sends a text message, attaching an inline keyboard when the message
// carries choices.
func (t *Telegram) Send(ctx context.Context, chatID string, msg *channels.OutgoingMessage) error {
	cid, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", chatID, err)
	}

	payload := map[string]any{
		"chat_id":                  cid,
		"text":                     msg.Text,
		"parse_mode":               t.cfg.ParseMode,
		"disable_web_page_preview": !msg.ShowPreview,
	}
	if len(msg.Choices) > 0 {
		row := make([]map[string]string, 0, len(msg.Choices))
		for _, c := range msg.Choices {
			row = append(row, map[string]string{
				"text":          c.Label,
				"callback_data": c.Data,
			})
		}
		payload["reply_markup"] = map[string]any{
			"inline_keyboard": [][]map[string]string{row},
		}
	}

	if _, err := t.apiCall(ctx, "sendMessage", payload); err != nil {
		return fmt.Errorf("%w: %v", channels.ErrSendFailed, err)
	}
	return nil
}

// SendTyping sends a "typing..." chat action. Best effort.
func (t *Telegram) SendTyping(ctx context.Context, chatID string) error {
	cid, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil
	}
	_, err = t.apiCall(ctx, "sendChatAction", map[string]any{
		"chat_id": cid,
		"action":  "typing",
	})
	return err
}

// AckCallback acknowledges a callback query.
func (t *Telegram) AckCallback(ctx context.Context, callbackID string) error {
	_, err := t.apiCall(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

// SetWebhook registers the webhook URL with Telegram. Called at startup;
// without a public URL it logs and skips, which keeps local runs working.
func (t *Telegram) SetWebhook(ctx context.Context) error {
	if t.cfg.PublicURL == "" {
		t.logger.Warn("no public URL configured, skipping setWebhook")
		return nil
	}
	hookURL := strings.TrimRight(t.cfg.PublicURL, "/") + WebhookPath
	_, err := t.apiCall(ctx, "setWebhook", map[string]any{
		"url": hookURL,
	})
	if err != nil {
		return fmt.Errorf("telegram: setWebhook: %w", err)
	}
	t.logger.Info("webhook registered", "url", hookURL)
	return nil
}

// WebhookInfo returns the raw getWebhookInfo result (for debug endpoints).
func (t *Telegram) WebhookInfo(ctx context.Context) (json.RawMessage, error) {
	return t.apiCall(ctx, "getWebhookInfo", nil)
}

// ---------- Update parsing ----------

type tgUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *tgMessage       `json:"message"`
	EditedMessage *tgMessage       `json:"edited_message"`
	CallbackQuery *tgCallbackQuery `json:"callback_query"`
}

type tgMessage struct {
	MessageID int     `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      tgChat  `json:"chat"`
	Text      string  `json:"text"`
}

type tgUser struct {
	ID int64 `json:"id"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgCallbackQuery struct {
	ID      string     `json:"id"`
	From    *tgUser    `json:"from"`
	Message *tgMessage `json:"message"`
	Data    string     `json:"data"`
}

// ParseUpdate converts a raw webhook body into a channel event. Returns
// (nil, nil) for update types the assistant does not handle, so callers can
// ack and move on.
func ParseUpdate(body []byte) (*channels.Event, error) {
	var u tgUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("telegram: parsing update: %w", err)
	}

	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil || cq.Message == nil {
			return nil, nil
		}
		return &channels.Event{
			ID:         strconv.FormatInt(u.UpdateID, 10),
			ChatID:     strconv.FormatInt(cq.Message.Chat.ID, 10),
			UserID:     strconv.FormatInt(cq.From.ID, 10),
			Action:     cq.Data,
			CallbackID: cq.ID,
		}, nil
	}

	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage // treat edits as new messages
	}
	if msg == nil || msg.Text == "" || msg.From == nil {
		return nil, nil
	}
	return &channels.Event{
		ID:     strconv.FormatInt(u.UpdateID, 10),
		ChatID: strconv.FormatInt(msg.Chat.ID, 10),
		UserID: strconv.FormatInt(msg.From.ID, 10),
		Text:   msg.Text,
	}, nil
}

// ---------- Internal ----------

func (t *Telegram) apiCall(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	url := t.baseURL + "/" + method
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: creating request for %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("telegram: decoding %s response: %w", method, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("telegram: %s: %s", method, result.Description)
	}
	return result.Result, nil
}
