package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/media"
	"transcript-fetcher/internal/transcript"
	"transcript-fetcher/pkg/log"
)

type Config struct {
	// PollInterval is how long the worker sleeps when no job is pending.
	PollInterval time.Duration
	// TranscribeTimeout bounds a single speech-recognition run so one
	// pathological job cannot starve the queue.
	TranscribeTimeout time.Duration
	// MaxDurationSeconds rejects media longer than this before any audio
	// is downloaded. Zero disables the check.
	MaxDurationSeconds int
	// ScratchDir is where per-job audio scratch directories are created.
	// Empty means the system temp dir.
	ScratchDir string
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.TranscribeTimeout <= 0 {
		c.TranscribeTimeout = 10 * time.Minute
	}
}

// Worker drains the job store: it claims the oldest pending job, runs the
// acquisition, and transitions the job to a terminal state. One job is in
// processing at a time.
type Worker struct {
	store jobs.Store
	audio media.AudioRetriever
	asr   media.Transcriber
	probe media.DurationProber
	cfg   Config
}

func New(
	store jobs.Store,
	audio media.AudioRetriever,
	asr media.Transcriber,
	probe media.DurationProber,
	cfg Config,
) *Worker {
	cfg.applyDefaults()
	return &Worker{
		store: store,
		audio: audio,
		asr:   asr,
		probe: probe,
		cfg:   cfg,
	}
}

// Run polls the job store until ctx is cancelled. Per-job failures never
// stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	log.Info("transcription worker started (poll interval %s)", w.cfg.PollInterval)
	for {
		claimed, err := w.runOnce(ctx)
		if err != nil {
			log.Error("worker claim failed: %v", err)
		}
		if claimed && err == nil {
			// More work may be queued; claim again immediately.
			continue
		}
		select {
		case <-ctx.Done():
			log.Info("transcription worker stopping")
			return nil
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// runOnce claims and processes at most one job. It reports whether a job was
// claimed.
func (w *Worker) runOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextPending(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.process(ctx, job)
	return true, nil
}

// process executes one claimed job and always leaves it in a terminal state.
// Any failure, including a panic in an adapter, becomes an error transition.
func (w *Worker) process(ctx context.Context, job *jobs.TranscriptJob) {
	log.Info("processing job %s (video %s)", job.ID, job.VideoID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing job %s: %v", job.ID, r)
			w.fail(ctx, job.ID, "Audio transcription failed unexpectedly")
		}
	}()

	text, durationSeconds, failMsg := w.execute(ctx, job.VideoID)
	if failMsg != "" {
		w.fail(ctx, job.ID, failMsg)
		return
	}

	if err := w.store.CompleteJob(ctx, job.ID, text, durationSeconds); err != nil {
		log.Error("failed to mark job %s done: %v", job.ID, err)
		return
	}
	log.Info("job %s done: %d chars, %ds of audio", job.ID, len(text), durationSeconds)
}

// execute runs the acquisition for one video. It returns the normalized
// transcript and known duration, or a user-safe failure message.
func (w *Worker) execute(ctx context.Context, videoID string) (string, int, string) {
	durationSeconds := 0
	if seconds, known, err := w.probe.Duration(ctx, videoID); err != nil {
		// Unknown duration is not fatal; the timeout still bounds us.
		log.Warn("duration probe for %s failed: %v", videoID, err)
	} else if known {
		durationSeconds = seconds
		if w.cfg.MaxDurationSeconds > 0 && seconds > w.cfg.MaxDurationSeconds {
			return "", 0, fmt.Sprintf(
				"The video is %d minutes long; the limit for audio transcription is %d minutes",
				seconds/60,
				w.cfg.MaxDurationSeconds/60,
			)
		}
	}

	scratch, err := os.MkdirTemp(orTempDir(w.cfg.ScratchDir), "transcribe-*")
	if err != nil {
		log.Error("failed to create scratch dir: %v", err)
		return "", 0, "Audio transcription is temporarily unavailable"
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Warn("failed to remove scratch dir %s: %v", scratch, err)
		}
	}()

	audioPath, err := w.audio.RetrieveAudio(ctx, videoID, scratch)
	if err != nil {
		log.Warn("audio retrieval for %s failed: %v", videoID, err)
		return "", 0, "We could not download the audio for this video"
	}

	tctx, cancel := context.WithTimeout(ctx, w.cfg.TranscribeTimeout)
	defer cancel()
	raw, err := w.asr.Transcribe(tctx, audioPath)
	if err != nil {
		log.Warn("speech recognition for %s failed: %v", videoID, err)
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return "", 0, "Audio transcription timed out"
		}
		return "", 0, "Speech recognition failed for this video"
	}

	text := transcript.Normalize(raw)
	if len(text) < transcript.MinViableLength {
		return "", 0, "Speech recognition produced too little text to be usable"
	}
	return text, durationSeconds, ""
}

func (w *Worker) fail(ctx context.Context, jobID, message string) {
	if err := w.store.FailJob(ctx, jobID, message); err != nil {
		log.Error("failed to mark job %s as failed: %v", jobID, err)
	}
}

func orTempDir(dir string) string {
	if dir == "" {
		return os.TempDir()
	}
	return dir
}
