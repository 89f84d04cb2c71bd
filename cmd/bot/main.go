package main

import (
	"discord_intro_bot/internal/infra/logger"

	"github.com/spf13/cobra"
)

// rootCmd runs the bot when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "bot",
	Short:         "Discord self-introduction bot",
	Long:          "Validates self-introductions posted on Discord, grants the configured role and republishes them to a notification channel.",
	RunE:          runBot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Fatalf("FATAL: %v", err)
	}
}
