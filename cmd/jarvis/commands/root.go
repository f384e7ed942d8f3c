// Package commands implements the Jarvis CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jarvis",
		Short: "Jarvis - conversational assistant over Telegram",
		Long: `Jarvis is a personal assistant reachable over a Telegram webhook.
It takes notes with a confirm/edit/cancel round, schedules durable
reminders, and answers everything else through a generation service.

Examples:
  jarvis serve
  jarvis chat
  jarvis config set-key`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newConfigCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
