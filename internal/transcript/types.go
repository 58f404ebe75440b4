package transcript

import "time"

// Source records how a transcript was obtained.
type Source string

const (
	// SourceCaptions means the text came from creator-supplied captions.
	SourceCaptions Source = "captions"
	// SourceASR means the text came from speech recognition.
	SourceASR Source = "asr"
)

// MinViableLength is the shortest normalized transcript (in bytes) that is
// considered usable. Anything shorter is treated as an acquisition failure
// and must never be persisted or returned to a caller as a result.
const MinViableLength = 100

// Record is a cached transcript for a single video. The cache is a map keyed
// by VideoID, not a log: writes are idempotent upserts.
type Record struct {
	VideoID         string    `json:"video_id"`
	Text            string    `json:"text"`
	Source          Source    `json:"source"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Usable reports whether the record's text meets the minimum viable length.
func (r *Record) Usable() bool {
	return r != nil && len(r.Text) >= MinViableLength
}
