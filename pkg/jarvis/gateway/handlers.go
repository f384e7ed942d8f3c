// Package gateway – handlers.go contains the HTTP route handlers.
package gateway

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/channels/telegram"
)

// maxWebhookBody bounds inbound webhook payloads.
const maxWebhookBody = 1 << 20

// handleWebhook receives a platform update. It always answers 200 right
// away; parsing and processing happen in the background so the platform
// never queues retries behind a slow generation call.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.logger.Warn("webhook body read failed", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	go s.process(body)
}

// process parses and dispatches one webhook payload.
func (s *Server) process(body []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in event handler", "panic", r)
		}
	}()

	ev, err := telegram.ParseUpdate(body)
	if err != nil {
		s.logger.Warn("unparseable update dropped", "error", err)
		return
	}
	if ev == nil {
		// Supported envelope, unsupported update type.
		return
	}

	s.api.HandleEvent(s.baseCtx, ev)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"ok":     true,
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleDebugState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"uptime": time.Since(s.started).Round(time.Second).String(),
		"state":  s.api.DebugState(),
	})
}

// handleDebugWebhook proxies the platform's own view of the webhook
// registration, useful when deliveries silently stop.
func (s *Server) handleDebugWebhook(w http.ResponseWriter, r *http.Request) {
	info, err := s.channel.WebhookInfo(r.Context())
	if err != nil {
		s.logger.Error("webhook info failed", "error", err)
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(info)
}

// keyMiddleware guards debug routes with the configured key, accepted as
// the X-Debug-Key header or the key query parameter.
func (s *Server) keyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.DebugKey == "" {
			next(w, r)
			return
		}

		key := r.Header.Get("X-Debug-Key")
		if key == "" {
			key = r.URL.Query().Get("key")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.DebugKey)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(v)
}
