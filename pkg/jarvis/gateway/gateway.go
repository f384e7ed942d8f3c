// Package gateway implements the inbound HTTP surface: the Telegram webhook
// endpoint plus health and debug routes. The webhook is acknowledged
// immediately and events are processed asynchronously so the platform never
// retries a slow handler.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/channels"
	"github.com/mkotov/jarvis/pkg/jarvis/channels/telegram"
)

// API is the assistant surface the gateway needs. Keeps the gateway free of
// a direct dependency on the assistant package.
type API interface {
	// HandleEvent processes one inbound event; it must not panic and
	// handles its own errors.
	HandleEvent(ctx context.Context, ev *channels.Event)

	// DebugState returns a JSON-serializable snapshot of internal state.
	DebugState() any
}

// Config holds gateway configuration.
type Config struct {
	// Address is the listen address (default: ":3000").
	Address string

	// DebugKey protects the /debug routes. Empty leaves them open.
	DebugKey string
}

// Server is the webhook HTTP server.
type Server struct {
	cfg     Config
	channel *telegram.Telegram
	api     API
	logger  *slog.Logger

	server  *http.Server
	baseCtx context.Context
	cancel  context.CancelFunc
	started time.Time
}

// New creates the gateway server.
func New(cfg Config, channel *telegram.Telegram, api API, logger *slog.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = ":3000"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		channel: channel,
		api:     api,
		logger:  logger.With("component", "gateway"),
	}
}

// Start begins serving. The context bounds background event processing:
// in-flight handlers are cancelled when it ends.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.started = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+telegram.WebhookPath, s.handleWebhook)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug/state", s.keyMiddleware(s.handleDebugState))
	mux.HandleFunc("GET /debug/webhook", s.keyMiddleware(s.handleDebugWebhook))

	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("gateway starting", "address", s.cfg.Address)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("gateway server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server and cancels in-flight processing.
func (s *Server) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("gateway stopped")
}
