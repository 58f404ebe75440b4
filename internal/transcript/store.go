package transcript

import "context"

// Store is the durable transcript cache, keyed by video identifier.
type Store interface {
	// GetTranscript returns the cached record for a video, if any.
	GetTranscript(ctx context.Context, videoID string) (*Record, bool, error)
	// UpsertTranscript inserts or replaces the record for its video.
	// Records below MinViableLength are rejected.
	UpsertTranscript(ctx context.Context, rec *Record) error
	// SaveTranscriptIfAbsent inserts the record only when no record exists
	// for the video yet. An existing record is left untouched.
	SaveTranscriptIfAbsent(ctx context.Context, rec *Record) error
}
