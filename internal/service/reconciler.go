package service

import (
	"context"
	"time"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/transcript"
	"transcript-fetcher/pkg/log"
)

// Reconciler serves the client polling protocol. It reads job state and, on
// success, writes the result through to the transcript cache so future
// requests for the same video hit the fast path.
type Reconciler struct {
	transcripts transcript.Store
	jobs        jobs.Store
}

func NewReconciler(transcripts transcript.Store, jobStore jobs.Store) *Reconciler {
	return &Reconciler{transcripts: transcripts, jobs: jobStore}
}

// Poll returns the current outcome for a job handle. Unknown handles yield
// jobs.ErrNotFound, which is distinct from every job status.
func (r *Reconciler) Poll(ctx context.Context, jobID string) (*Result, error) {
	job, err := r.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case jobs.StatusPending:
		return &Result{
			Status:  StatusProcessing,
			Message: "Waiting for a transcription worker to pick up the job.",
		}, nil
	case jobs.StatusProcessing:
		return &Result{
			Status:  StatusProcessing,
			Message: "Audio transcription is running.",
		}, nil
	case jobs.StatusDone:
		r.writeThrough(ctx, job)
		return &Result{
			Status:          StatusDone,
			Transcript:      job.ResultText,
			Source:          job.ResultSource,
			DurationSeconds: job.DurationSeconds,
		}, nil
	default:
		return &Result{
			Status:  StatusError,
			Message: withManualFallback(job.ErrorMessage),
		}, nil
	}
}

// writeThrough caches a completed job's transcript. It is idempotent and
// best-effort: an existing record for the video wins, and a store failure
// never fails the poll since the result is already in hand.
func (r *Reconciler) writeThrough(ctx context.Context, job *jobs.TranscriptJob) {
	rec := &transcript.Record{
		VideoID:         job.VideoID,
		Text:            job.ResultText,
		Source:          job.ResultSource,
		DurationSeconds: job.DurationSeconds,
		CreatedAt:       time.Now().UTC(),
	}
	if err := r.transcripts.SaveTranscriptIfAbsent(ctx, rec); err != nil {
		log.Warn("write-through for video %s (job %s) failed: %v", job.VideoID, job.ID, err)
	}
}
