package jobs

import (
	"time"

	"transcript-fetcher/internal/transcript"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition is defined for the status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransitionTo reports whether the status machine permits moving from s
// to next. The only legal moves are pending→processing and
// processing→(done|error); a job never skips processing and never leaves a
// terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusDone || next == StatusError
	default:
		return false
	}
}

// TranscriptJob is one asynchronous speech-recognition job. Rows are written
// by the coordinator (creation) and the worker (every later transition); the
// store is the sole source of truth for job state.
type TranscriptJob struct {
	ID              string            `json:"id"`
	VideoID         string            `json:"video_id"`
	Status          Status            `json:"status"`
	ResultText      string            `json:"result_text,omitempty"`
	ResultSource    transcript.Source `json:"result_source,omitempty"`
	DurationSeconds int               `json:"duration_seconds,omitempty"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
