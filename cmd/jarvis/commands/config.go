package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/mkotov/jarvis/pkg/jarvis/assistant"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newConfigCmd creates the `jarvis config` command group for credential and
// config management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and credentials",
	}

	cmd.AddCommand(
		newConfigSetKeyCmd(),
		newConfigSetTokenCmd(),
		newConfigShowCmd(),
		newConfigInitCmd(),
	)
	return cmd
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the generation-service API key in the OS keyring",
		RunE: func(*cobra.Command, []string) error {
			key, err := readSecret("API key: ")
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("empty key")
			}
			if err := assistant.StoreKeyring("api_key", key); err != nil {
				return fmt.Errorf("storing in keyring: %w", err)
			}
			fmt.Println("API key stored in OS keyring.")
			return nil
		},
	}
}

func newConfigSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token",
		Short: "Store the Telegram bot token in the OS keyring",
		RunE: func(*cobra.Command, []string) error {
			tok, err := readSecret("Bot token: ")
			if err != nil {
				return err
			}
			if tok == "" {
				return fmt.Errorf("empty token")
			}
			if err := assistant.StoreKeyring("bot_token", tok); err != nil {
				return fmt.Errorf("storing in keyring: %w", err)
			}
			fmt.Println("Bot token stored in OS keyring.")
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (secrets masked)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := assistant.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			assistant.ResolveCredentials(cfg, logger)

			fmt.Printf("name:           %s\n", cfg.Name)
			fmt.Printf("bot token:      %s\n", mask(cfg.Telegram.Token))
			fmt.Printf("public URL:     %s\n", valueOr(cfg.Telegram.PublicURL, "(not set)"))
			fmt.Printf("API key:        %s\n", mask(cfg.API.APIKey))
			fmt.Printf("model:          %s\n", cfg.API.Model)
			fmt.Printf("storage:        %s\n", storageDesc(cfg))
			fmt.Printf("listen address: %s\n", cfg.Gateway.Address)
			fmt.Printf("keyring:        available=%v\n", assistant.KeyringAvailable())
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			cfg := assistant.DefaultConfig()
			cfg.Telegram.Token = "${BOT_TOKEN}"
			cfg.API.APIKey = "${OPENAI_API_KEY}"
			if err := assistant.SaveConfigToFile(cfg, path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s. Fill in BOT_TOKEN and OPENAI_API_KEY via .env or the keyring.\n", path)
			return nil
		},
	}
}

// readSecret reads a line without echo when attached to a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func storageDesc(cfg *assistant.Config) string {
	if cfg.Storage.Memory {
		return "memory (non-durable)"
	}
	return "sqlite " + cfg.Storage.Path
}
