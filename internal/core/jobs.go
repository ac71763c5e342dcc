package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// event source (the webhook handler) from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a parsed Event and queues it for processing. It
	// returns an error if the job cannot be queued, for example when the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, event *Event) error

	// Stop shuts the dispatcher down, letting in-flight jobs finish.
	Stop()
}

// Job represents a single, executable unit of work processed by the
// dispatcher. Each job is triggered by one forge event and performs a
// specific task, such as posting a chat notification.
type Job interface {
	// Run executes the job's logic for one event. It returns an error if
	// the job fails to complete successfully.
	Run(ctx context.Context, event *Event) error
}
