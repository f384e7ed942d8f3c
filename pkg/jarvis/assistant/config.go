// Package assistant – config.go defines the configuration structures for
// the Jarvis assistant.
package assistant

import (
	"fmt"
	"time"

	"github.com/mkotov/jarvis/pkg/jarvis/channels/telegram"
	"github.com/mkotov/jarvis/pkg/jarvis/dedup"
	"github.com/mkotov/jarvis/pkg/jarvis/llm"
)

// Config holds all assistant configuration.
type Config struct {
	// Name is the assistant persona name used in prompts.
	Name string `yaml:"name"`

	// Telegram configures the messaging channel.
	Telegram telegram.Config `yaml:"telegram"`

	// API configures the generation-service endpoint.
	API llm.Config `yaml:"api"`

	// Storage configures persistence.
	Storage StorageConfig `yaml:"storage"`

	// Gateway configures the HTTP server.
	Gateway GatewayConfig `yaml:"gateway"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`

	// DedupCapacity bounds the inbound duplicate-event window.
	DedupCapacity int `yaml:"dedup_capacity"`

	// RateLimitMs is the per-user inbound message rate limit in
	// milliseconds. Zero disables rate limiting.
	RateLimitMs int `yaml:"rate_limit_ms"`

	// PendingTTLMinutes is how long a drafted action survives without a
	// save/edit/cancel decision.
	PendingTTLMinutes int `yaml:"pending_ttl_minutes"`
}

// StorageConfig configures the persistence backend.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// Memory switches to the in-memory stores. NON-DURABLE: pending
	// drafts, notes, and scheduled reminders are lost on restart. Only
	// for ephemeral demo deployments.
	Memory bool `yaml:"memory"`
}

// GatewayConfig configures the HTTP server.
type GatewayConfig struct {
	// Address is the listen address (host:port).
	Address string `yaml:"address"`

	// DebugKey protects the /debug endpoints. Empty leaves them open.
	DebugKey string `yaml:"debug_key"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:              "Jarvis",
		API:               llm.Config{Model: "gpt-4.1-mini"},
		Storage:           StorageConfig{Path: "./data/jarvis.db"},
		Gateway:           GatewayConfig{Address: ":3000"},
		Logging:           LoggingConfig{Level: "info", Format: "json"},
		DedupCapacity:     dedup.DefaultCapacity,
		RateLimitMs:       900,
		PendingTTLMinutes: 30,
	}
}

// PendingTTL returns the pending-draft TTL as a duration.
func (c *Config) PendingTTL() time.Duration {
	if c.PendingTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.PendingTTLMinutes) * time.Minute
}

// ConfigError is a fatal startup configuration problem, such as a missing
// required credential.
type ConfigError struct {
	Field string
	Hint  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: missing %s (%s)", e.Field, e.Hint)
}

// Validate checks that required credentials are present; failures are fatal
// at startup.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return &ConfigError{Field: "telegram token", Hint: "set BOT_TOKEN or telegram.token"}
	}
	if c.API.APIKey == "" {
		return &ConfigError{Field: "API key", Hint: "set OPENAI_API_KEY or api.api_key"}
	}
	return nil
}
