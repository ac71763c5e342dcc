package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avisser/pr-herald/internal/core"
	"github.com/avisser/pr-herald/internal/notify"
)

// NotifyJob posts one chat notification for one forge event. It threads
// follow-up events under the first message posted for the same pull
// request.
type NotifyJob struct {
	pipeline *notify.Pipeline
	threads  *ThreadRegistry
	logger   *slog.Logger
}

// NewNotifyJob creates the notification job.
func NewNotifyJob(pipeline *notify.Pipeline, threads *ThreadRegistry, logger *slog.Logger) core.Job {
	if pipeline == nil {
		panic("pipeline cannot be nil")
	}
	if threads == nil {
		panic("thread registry cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &NotifyJob{pipeline: pipeline, threads: threads, logger: logger}
}

// Run executes the notification pipeline for a forge event.
func (j *NotifyJob) Run(ctx context.Context, event *core.Event) error {
	key := ThreadKey(event.Repository.FullName, event.PullRequest.ID)
	parent := j.threads.Parent(key)

	ts, err := j.pipeline.PostNotification(ctx, event, parent)
	if errors.Is(err, notify.ErrNothingToSend) {
		j.logger.Info("nothing to send for event",
			"repo", event.Repository.FullName,
			"pr", event.PullRequest.ID,
			"action", event.Action,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("notification for %s pr %d: %w",
			event.Repository.FullName, event.PullRequest.ID, err)
	}

	j.threads.Record(key, ts)
	j.logger.Info("notification posted",
		"repo", event.Repository.FullName,
		"pr", event.PullRequest.ID,
		"action", event.Action,
		"ts", ts,
	)
	return nil
}
