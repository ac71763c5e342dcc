package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avisser/pr-herald/internal/config"
	"github.com/avisser/pr-herald/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pr-herald",
	Short: "Post Slack notifications for Gitea pull request events",
	Long: `pr-herald translates Gitea pull request webhooks into Slack
notifications. The CLI replays payloads through the same pipeline the
server uses, which is handy for verifying tokens, channel configuration,
and rendering without a live forge.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(checkCmd)
}

// loadConfig loads .env and the process environment the same way the server
// does. Precedence: real env vars > .env file values.
func loadConfig() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)
	slog.SetDefault(log)
	return cfg, log, nil
}
