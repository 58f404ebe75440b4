package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for job IDs with no stored row. A cleaned-up or
// never-issued handle is indistinguishable from either; both map to "not
// found", which is distinct from every job status.
var ErrNotFound = errors.New("job not found")

// Store persists job state across the request handlers and the worker, which
// may run in separate processes.
type Store interface {
	// CreateJob inserts a new pending job row.
	CreateJob(ctx context.Context, job *TranscriptJob) error
	// GetJob returns the job for the given ID, or ErrNotFound.
	GetJob(ctx context.Context, jobID string) (*TranscriptJob, error)
	// ClaimNextPending atomically moves the oldest pending job to
	// processing and returns it. Returns (nil, nil) when nothing is
	// pending. The claim is guarded on the prior status so two workers
	// can never claim the same job.
	ClaimNextPending(ctx context.Context) (*TranscriptJob, error)
	// CompleteJob transitions a processing job to done with its result.
	CompleteJob(ctx context.Context, jobID, text string, durationSeconds int) error
	// FailJob transitions a processing job to error with a user-safe
	// message.
	FailJob(ctx context.Context, jobID, message string) error
	// RequeueStuckProcessing moves jobs that have sat in processing since
	// before staleBefore back to pending, so a worker restart cannot
	// strand them forever. Returns the number of requeued jobs.
	RequeueStuckProcessing(ctx context.Context, staleBefore time.Time) (int64, error)
	// DeleteTerminalJobsBefore removes done/error jobs last updated
	// before cutoff. Returns the number of deleted jobs.
	DeleteTerminalJobsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
