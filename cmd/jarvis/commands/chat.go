package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/mkotov/jarvis/pkg/jarvis/assistant"
	"github.com/mkotov/jarvis/pkg/jarvis/channels"
	"github.com/mkotov/jarvis/pkg/jarvis/llm"
	"github.com/mkotov/jarvis/pkg/jarvis/notes"
	"github.com/mkotov/jarvis/pkg/jarvis/pending"
	"github.com/mkotov/jarvis/pkg/jarvis/reminder"
	"github.com/spf13/cobra"
)

// newChatCmd creates the `jarvis chat` command: a local REPL over the same
// conversation engine the webhook uses, with in-memory storage.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant from the terminal",
		Long: `Start a local conversation without Telegram. Notes, reminders,
and drafts live only for the session. Confirmation buttons become the
commands "save", "edit", and "cancel".

Example:
  jarvis chat`,
		RunE: runChat,
	}
}

// consoleSender prints replies to stdout instead of a messaging platform.
type consoleSender struct{}

func (consoleSender) Name() string { return "console" }

func (consoleSender) Send(_ context.Context, _ string, msg *channels.OutgoingMessage) error {
	fmt.Printf("\n%s\n", msg.Text)
	if len(msg.Choices) > 0 {
		fmt.Printf("(type: %s)\n", strings.Join(choiceWords(msg.Choices), " / "))
	}
	fmt.Println()
	return nil
}

func (consoleSender) SendTyping(context.Context, string) error  { return nil }
func (consoleSender) AckCallback(context.Context, string) error { return nil }

// choiceWords maps callback tokens to the words the REPL accepts.
func choiceWords(choices []channels.Choice) []string {
	var out []string
	for _, c := range choices {
		if i := strings.IndexByte(c.Data, ':'); i >= 0 {
			out = append(out, c.Data[i+1:])
		}
	}
	return out
}

// callbackWords maps REPL words back to callback action tokens.
var callbackWords = map[string]string{
	"save":   assistant.ActionSave,
	"edit":   assistant.ActionEdit,
	"cancel": assistant.ActionCancel,
}

func runChat(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := assistant.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	assistant.ResolveCredentials(cfg, logger)
	if cfg.API.APIKey == "" {
		return &assistant.ConfigError{Field: "API key", Hint: "set OPENAI_API_KEY or run: jarvis config set-key"}
	}

	// Local sessions are bursty by nature; no rate limit.
	cfg.RateLimitMs = 0

	sender := consoleSender{}
	var bot *assistant.Assistant
	sched := reminder.New(reminder.NewMemoryStorage(), func(ctx context.Context, channel, body string) error {
		return bot.DeliverReminder(ctx, channel, body)
	}, logger)

	bot = assistant.New(cfg, assistant.Deps{
		Sender:    sender,
		Generator: llm.NewClient(cfg.API, logger),
		Scheduler: sched,
		Notes:     notes.NewMemoryStore(),
		Pending:   pending.NewMemoryStore(cfg.PendingTTL()),
		History:   assistant.NewMemoryHistory(),
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	homeDir, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(homeDir, ".jarvis-history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("%s at your service. Type \"exit\" to quit.\n\n", cfg.Name)

	for {
		input, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(input) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		ev := &channels.Event{
			ID:     uuid.NewString(),
			ChatID: "console",
			UserID: "console",
		}
		if action, ok := callbackWords[strings.ToLower(input)]; ok {
			ev.Action = action
			ev.CallbackID = uuid.NewString()
		} else {
			ev.Text = input
		}

		bot.HandleEvent(ctx, ev)
	}

	fmt.Println("Bye.")
	return nil
}
