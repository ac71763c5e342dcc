// Package jobs defines the background tasks that turn forge events into
// chat notifications, and the worker pool that runs them.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avisser/pr-herald/internal/core"
)

// dispatcher implements core.JobDispatcher and manages a pool of worker
// goroutines for processing forge events as notification jobs.
type dispatcher struct {
	notifyJob  core.Job         // Job implementation executed by each worker.
	jobQueue   chan *core.Event // Queue of incoming forge events.
	maxWorkers int              // Number of concurrent workers.
	wg         sync.WaitGroup   // Tracks active workers for graceful shutdown.
	logger     *slog.Logger     // Logger instance for the dispatcher.
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(notifyJob core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		notifyJob:  notifyJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.Event, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := 0; i < d.maxWorkers; i++ {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting notification worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down notification worker", "id", workerID)
}

// processEvent logs and runs the notification job for one forge event.
func (d *dispatcher) processEvent(workerID int, event *core.Event) {
	d.logger.Info("worker processing event",
		"worker_id", workerID,
		"repo", event.Repository.FullName,
		"action", event.Action,
	)

	err := d.notifyJob.Run(context.Background(), event)
	if err != nil {
		d.logger.Error("notification job failed",
			"repo", event.Repository.FullName,
			"pr", event.PullRequest.ID,
			"error", err,
		)
	}
}

// Dispatch queues a forge event for processing by a worker.
func (d *dispatcher) Dispatch(_ context.Context, event *core.Event) error {
	d.logger.Info("queuing notification job", "repo", event.Repository.FullName, "action", event.Action)

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new notification job")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all notification jobs have finished")
}
