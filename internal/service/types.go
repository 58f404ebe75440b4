package service

import (
	"errors"
	"strings"

	"transcript-fetcher/internal/transcript"
)

// Status is the externally visible state of an acquisition or polling
// request. Job "not found" is not a Status: it surfaces as an error.
type Status string

const (
	StatusDone       Status = "done"
	StatusProcessing Status = "processing"
	StatusError      Status = "error"
)

// ErrInvalidVideoID is returned before any store access when the caller's
// identifier cannot be recognized as a video.
var ErrInvalidVideoID = errors.New("invalid video identifier")

// Result is the outcome of an acquisition or polling request.
type Result struct {
	Status          Status            `json:"status"`
	Transcript      string            `json:"transcript,omitempty"`
	Source          transcript.Source `json:"source,omitempty"`
	DurationSeconds int               `json:"duration_seconds,omitempty"`
	JobID           string            `json:"job_id,omitempty"`
	Message         string            `json:"message,omitempty"`
}

const manualFallback = "Please paste the transcript manually."

// withManualFallback appends the universal next step to a user-facing
// failure message. Every terminal failure must leave the caller a path
// forward.
func withManualFallback(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return manualFallback
	}
	if !strings.HasSuffix(message, ".") && !strings.HasSuffix(message, "!") {
		message += "."
	}
	return message + " " + manualFallback
}
