package assistant

import (
	"errors"
	"testing"
)

func TestParseConfigOverlaysDefaults(t *testing.T) {
	t.Parallel()

	yaml := `
name: Friday
telegram:
  token: tok-123
api:
  api_key: sk-test
  model: gpt-4.1-mini
gateway:
  address: ":9000"
`
	cfg, err := ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "Friday" {
		t.Errorf("name not overlaid: %q", cfg.Name)
	}
	if cfg.Gateway.Address != ":9000" {
		t.Errorf("gateway address not overlaid: %q", cfg.Gateway.Address)
	}
	// Untouched fields keep defaults.
	if cfg.RateLimitMs != 900 {
		t.Errorf("default rate limit lost: %d", cfg.RateLimitMs)
	}
	if cfg.DedupCapacity == 0 {
		t.Error("default dedup capacity lost")
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty config should fail validation")
	}

	cfg.Telegram.Token = "tok"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("missing API key should fail validation")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}

	cfg.API.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete config should validate: %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("JARVIS_TEST_TOKEN", "tok-from-env")

	out := expandEnvVars("token: ${JARVIS_TEST_TOKEN}\nkeep: ${JARVIS_TEST_UNSET}")
	if out != "token: tok-from-env\nkeep: ${JARVIS_TEST_UNSET}" {
		t.Errorf("unexpected expansion: %q", out)
	}
}

func TestPendingTTLFallsBackToDefault(t *testing.T) {
	t.Parallel()

	cfg := &Config{PendingTTLMinutes: 0}
	if got := cfg.PendingTTL().Minutes(); got != 30 {
		t.Errorf("expected 30m default, got %v", got)
	}
	cfg.PendingTTLMinutes = 5
	if got := cfg.PendingTTL().Minutes(); got != 5 {
		t.Errorf("expected 5m, got %v", got)
	}
}
