package media

import "context"

// The acquisition core treats caption extraction, audio download and speech
// recognition as opaque capabilities. The service layer and worker depend
// only on these interfaces; the exec-based adapters in this package are one
// implementation.

// FastExtractor attempts to obtain a transcript synchronously, typically
// from creator-supplied captions. It must return within seconds.
type FastExtractor interface {
	FastExtract(ctx context.Context, videoID string) (string, error)
}

// AudioRetriever downloads the source audio for a video into dir and returns
// the local file path. The caller owns cleanup of the returned file.
type AudioRetriever interface {
	RetrieveAudio(ctx context.Context, videoID, dir string) (string, error)
}

// Transcriber runs speech recognition on a local audio file. It may take
// minutes; callers bound it with a context timeout.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// DurationProber reports the media duration in seconds. The second return
// value is false when the duration is unknown.
type DurationProber interface {
	Duration(ctx context.Context, videoID string) (int, bool, error)
}
