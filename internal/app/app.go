// Package app initializes and orchestrates the main components of PR Herald.
// It wires together the configuration, clients, pipeline, and server.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/avisser/pr-herald/internal/chat"
	"github.com/avisser/pr-herald/internal/config"
	"github.com/avisser/pr-herald/internal/core"
	"github.com/avisser/pr-herald/internal/forge"
	"github.com/avisser/pr-herald/internal/jobs"
	"github.com/avisser/pr-herald/internal/notify"
	"github.com/avisser/pr-herald/internal/server"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing PR Herald",
		"server_port", cfg.ServerPort,
		"slack_channel", cfg.SlackChannel,
		"max_workers", cfg.MaxWorkers)

	pipeline := NewPipeline(cfg, logger)
	notifyJob := jobs.NewNotifyJob(pipeline, jobs.NewThreadRegistry(), logger)
	dispatcher := jobs.NewDispatcher(notifyJob, cfg.MaxWorkers, logger)
	httpServer := server.NewServer(ctx, cfg, dispatcher, logger)

	logger.Info("PR Herald initialized successfully")
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     httpServer,
		logger:     logger,
		dispatcher: dispatcher,
	}, nil
}

// NewPipeline builds the notification pipeline from configuration. It is
// shared between the server and the CLI so both go through the exact same
// code path.
func NewPipeline(cfg *config.Config, logger *slog.Logger) *notify.Pipeline {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	forgeClient := forge.NewClient(cfg.GiteaAPIToken, httpClient, logger)
	chatClient := chat.NewClient(cfg.SlackAPIToken, logger)
	return notify.NewPipeline(forgeClient, chatClient, cfg.SlackChannel, logger)
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting PR Herald", "server_port", a.cfg.ServerPort)

	err := a.server.Start()
	if err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down PR Herald services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight jobs to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("PR Herald stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("PR Herald stopped successfully")
	return nil
}
