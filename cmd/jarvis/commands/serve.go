package commands

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/assistant"
	"github.com/mkotov/jarvis/pkg/jarvis/channels/telegram"
	"github.com/mkotov/jarvis/pkg/jarvis/gateway"
	"github.com/mkotov/jarvis/pkg/jarvis/llm"
	"github.com/mkotov/jarvis/pkg/jarvis/notes"
	"github.com/mkotov/jarvis/pkg/jarvis/pending"
	"github.com/mkotov/jarvis/pkg/jarvis/reminder"
	"github.com/spf13/cobra"
)

// newServeCmd creates the `jarvis serve` command that starts the webhook
// daemon.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook daemon",
		Long: `Start Jarvis as a daemon: serve the Telegram webhook, run the
reminder scheduler, and answer chat through the generation service.

Examples:
  jarvis serve
  jarvis serve --config ./config.yaml`,
		RunE: runServe,
	}

	cmd.Flags().Bool("no-webhook", false, "skip webhook registration at startup")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := assistant.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	assistant.ResolveCredentials(cfg, logger)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── Storage ──
	var (
		db           *sql.DB
		pendingStore pending.Store
		noteStore    notes.Store
		remStorage   reminder.Storage
		historyStore assistant.HistoryStore
	)
	if cfg.Storage.Memory {
		logger.Warn("in-memory storage: notes, drafts, and reminders are lost on restart")
		pendingStore = pending.NewMemoryStore(cfg.PendingTTL())
		noteStore = notes.NewMemoryStore()
		remStorage = reminder.NewMemoryStorage()
		historyStore = assistant.NewMemoryHistory()
	} else {
		db, err = assistant.OpenDatabase(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		pendingStore = pending.NewSQLiteStore(db, cfg.PendingTTL())
		noteStore = notes.NewSQLiteStore(db)
		remStorage = reminder.NewSQLiteStorage(db)
		historyStore = assistant.NewSQLiteHistory(db)
		logger.Info("database opened", "path", cfg.Storage.Path)
	}

	// ── Channel, generation client, assistant ──
	tg := telegram.New(cfg.Telegram, logger)
	gen := llm.NewClient(cfg.API, logger)

	// The scheduler delivers through the assistant, which does not exist
	// yet; the closure resolves the pointer at fire time.
	var bot *assistant.Assistant
	sched := reminder.New(remStorage, func(ctx context.Context, channel, body string) error {
		return bot.DeliverReminder(ctx, channel, body)
	}, logger)

	bot = assistant.New(cfg, assistant.Deps{
		Sender:    tg,
		Generator: gen,
		Scheduler: sched,
		Notes:     noteStore,
		Pending:   pendingStore,
		History:   historyStore,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Start scheduler and gateway ──
	if err := sched.Start(ctx); err != nil {
		return err
	}

	gw := gateway.New(gateway.Config{
		Address:  cfg.Gateway.Address,
		DebugKey: cfg.Gateway.DebugKey,
	}, tg, bot, logger)
	if err := gw.Start(ctx); err != nil {
		sched.Stop()
		return err
	}

	// ── Register the webhook ──
	if skip, _ := cmd.Flags().GetBool("no-webhook"); !skip {
		regCtx, regCancel := context.WithTimeout(ctx, 15*time.Second)
		if err := tg.SetWebhook(regCtx); err != nil {
			logger.Error("webhook registration failed", "error", err)
		}
		regCancel()
	}

	logger.Info("Jarvis running. Press Ctrl+C to stop.",
		"name", cfg.Name,
		"address", cfg.Gateway.Address,
	)

	// ── Wait for shutdown ──
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	done := make(chan struct{})
	go func() {
		gw.Stop()
		sched.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out after 10s, forcing exit")
	}

	return nil
}

// newLogger builds the process logger from config and the verbose flag.
func newLogger(cmd *cobra.Command, cfg *assistant.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	return slog.New(handler)
}
