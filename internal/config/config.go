package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort         string
	LogLevel           string
	LogFormat          string
	MaxWorkers         int
	GiteaAPIToken      string
	GiteaWebhookSecret string
	SlackAPIToken      string
	SlackChannel       string
}

// LoadConfig reads configuration from environment variables and a .env file,
// setting sensible defaults. It uses the Viper library to handle
// configuration loading and precedence.
//
// The forge and Slack credentials are deliberately not required here: a
// missing credential must only fail the operation that needs it (identity
// and chat lookups fail softly, delivery fails hard), so presence checks
// live in the respective clients.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("MAX_WORKERS", 2)

	// A missing .env file is fine; everything can come from the environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading .env file: %w", err)
		}
	}

	if viper.GetString("GITEA_API_TOKEN") == "" {
		slog.Warn("GITEA_API_TOKEN is not set, identity resolution will fall back to anonymized emails")
	}
	if viper.GetString("SLACK_API_TOKEN") == "" {
		slog.Warn("SLACK_API_TOKEN is not set, notification delivery will fail")
	}
	if viper.GetString("SLACK_CHANNEL") == "" {
		slog.Warn("SLACK_CHANNEL is not set, notification delivery will fail")
	}

	return &Config{
		ServerPort:         viper.GetString("SERVER_PORT"),
		LogLevel:           viper.GetString("LOG_LEVEL"),
		LogFormat:          viper.GetString("LOG_FORMAT"),
		MaxWorkers:         viper.GetInt("MAX_WORKERS"),
		GiteaAPIToken:      viper.GetString("GITEA_API_TOKEN"),
		GiteaWebhookSecret: viper.GetString("GITEA_WEBHOOK_SECRET"),
		SlackAPIToken:      viper.GetString("SLACK_API_TOKEN"),
		SlackChannel:       viper.GetString("SLACK_CHANNEL"),
	}, nil
}
