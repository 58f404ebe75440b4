package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/media"
	"transcript-fetcher/internal/transcript"
	"transcript-fetcher/pkg/log"
)

// Coordinator is the request-facing entry point for transcript acquisition.
// It tries the cheapest source first: the durable cache, then synchronous
// caption extraction, then an asynchronous speech-recognition job.
type Coordinator struct {
	transcripts  transcript.Store
	jobs         jobs.Store
	extractor    media.FastExtractor
	asyncEnabled bool
}

func NewCoordinator(
	transcripts transcript.Store,
	jobStore jobs.Store,
	extractor media.FastExtractor,
	asyncEnabled bool,
) *Coordinator {
	return &Coordinator{
		transcripts:  transcripts,
		jobs:         jobStore,
		extractor:    extractor,
		asyncEnabled: asyncEnabled,
	}
}

// Acquire resolves a transcript for the given video identifier or locator.
// It returns ErrInvalidVideoID for unrecognizable input; every other outcome
// is expressed through the Result status.
func (c *Coordinator) Acquire(ctx context.Context, rawID string) (*Result, error) {
	videoID, err := ParseVideoID(rawID)
	if err != nil {
		return nil, err
	}

	// Cache-aside lookup. A store error degrades to a miss: the cache is
	// best-effort and the request can still be served by the slower paths.
	rec, ok, err := c.transcripts.GetTranscript(ctx, videoID)
	if err != nil {
		log.Warn("transcript cache lookup for %s failed: %v", videoID, err)
	} else if ok && rec.Usable() {
		return &Result{
			Status:          StatusDone,
			Transcript:      rec.Text,
			Source:          rec.Source,
			DurationSeconds: rec.DurationSeconds,
		}, nil
	}

	if result := c.tryFastPath(ctx, videoID); result != nil {
		return result, nil
	}

	if !c.asyncEnabled {
		return &Result{
			Status:  StatusError,
			Message: withManualFallback("No captions are available for this video and audio transcription is disabled"),
		}, nil
	}

	return c.createJob(ctx, videoID), nil
}

// tryFastPath attempts synchronous caption extraction. A nil return means
// the fast path produced nothing usable.
func (c *Coordinator) tryFastPath(ctx context.Context, videoID string) *Result {
	raw, err := c.extractor.FastExtract(ctx, videoID)
	if err != nil {
		log.Info("fast-path extraction for %s failed: %v", videoID, err)
		return nil
	}

	text := transcript.Normalize(raw)
	rec := &transcript.Record{
		VideoID:   videoID,
		Text:      text,
		Source:    transcript.SourceCaptions,
		CreatedAt: time.Now().UTC(),
	}
	if !rec.Usable() {
		log.Info("fast-path extraction for %s produced %d chars, below minimum", videoID, len(text))
		return nil
	}

	// Best-effort cache population: the caller still gets the transcript
	// even when the write fails.
	if err := c.transcripts.UpsertTranscript(ctx, rec); err != nil {
		log.Warn("failed to cache captions for %s: %v", videoID, err)
	}

	return &Result{
		Status:     StatusDone,
		Transcript: text,
		Source:     transcript.SourceCaptions,
	}
}

func (c *Coordinator) createJob(ctx context.Context, videoID string) *Result {
	now := time.Now().UTC()
	job := &jobs.TranscriptJob{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		Status:    jobs.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.jobs.CreateJob(ctx, job); err != nil {
		log.Error("failed to create transcription job for %s: %v", videoID, err)
		return &Result{
			Status:  StatusError,
			Message: withManualFallback("We could not start audio transcription right now"),
		}
	}

	log.Info("created transcription job %s for video %s", job.ID, videoID)
	return &Result{
		Status:  StatusProcessing,
		JobID:   job.ID,
		Message: "Audio transcription started. Results are usually ready within a couple of minutes.",
	}
}
