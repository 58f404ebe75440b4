package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/transcript"
)

func storedJob(f *fakeJobs, status jobs.Status) *jobs.TranscriptJob {
	job := &jobs.TranscriptJob{
		ID:        "job-1",
		VideoID:   "abc123xyz01",
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	f.jobs[job.ID] = job
	return job
}

func TestReconciler_UnknownJobIsNotFound(t *testing.T) {
	r := NewReconciler(newFakeTranscripts(), newFakeJobs())

	_, err := r.Poll(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, jobs.ErrNotFound)
}

func TestReconciler_PendingAndProcessingReportProgress(t *testing.T) {
	jobStore := newFakeJobs()
	job := storedJob(jobStore, jobs.StatusPending)
	r := NewReconciler(newFakeTranscripts(), jobStore)

	res, err := r.Poll(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, res.Status)
	assert.NotEmpty(t, res.Message)

	job.Status = jobs.StatusProcessing
	res, err = r.Poll(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, res.Status)
}

func TestReconciler_DoneReturnsResultAndWritesThrough(t *testing.T) {
	transcripts := newFakeTranscripts()
	jobStore := newFakeJobs()
	job := storedJob(jobStore, jobs.StatusDone)
	job.ResultText = usableText()
	job.ResultSource = transcript.SourceASR
	job.DurationSeconds = 42
	r := NewReconciler(transcripts, jobStore)

	res, err := r.Poll(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, usableText(), res.Transcript)
	assert.Equal(t, transcript.SourceASR, res.Source)
	assert.Equal(t, 42, res.DurationSeconds)

	cached, ok := transcripts.recs[job.VideoID]
	require.True(t, ok)
	assert.Equal(t, usableText(), cached.Text)
	assert.Equal(t, transcript.SourceASR, cached.Source)
	assert.Equal(t, 42, cached.DurationSeconds)
}

func TestReconciler_WriteThroughKeepsExistingRecord(t *testing.T) {
	transcripts := newFakeTranscripts()
	existing := &transcript.Record{
		VideoID: "abc123xyz01",
		Text:    usableText() + "from captions",
		Source:  transcript.SourceCaptions,
	}
	transcripts.recs[existing.VideoID] = existing

	jobStore := newFakeJobs()
	job := storedJob(jobStore, jobs.StatusDone)
	job.ResultText = usableText()
	job.ResultSource = transcript.SourceASR
	r := NewReconciler(transcripts, jobStore)

	res, err := r.Poll(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)

	// Existing record wins; both sources are equally valid.
	assert.Equal(t, existing.Text, transcripts.recs[job.VideoID].Text)
	assert.Equal(t, transcript.SourceCaptions, transcripts.recs[job.VideoID].Source)
}

func TestReconciler_WriteThroughFailureStillReturnsResult(t *testing.T) {
	transcripts := newFakeTranscripts()
	transcripts.upsertErr = assert.AnError
	jobStore := newFakeJobs()
	job := storedJob(jobStore, jobs.StatusDone)
	job.ResultText = usableText()
	job.ResultSource = transcript.SourceASR
	r := NewReconciler(transcripts, jobStore)

	res, err := r.Poll(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, res.Status)
	assert.Equal(t, 1, transcripts.absentCalls)
}

func TestReconciler_PollingIsIdempotentAfterDone(t *testing.T) {
	transcripts := newFakeTranscripts()
	jobStore := newFakeJobs()
	job := storedJob(jobStore, jobs.StatusDone)
	job.ResultText = usableText()
	job.ResultSource = transcript.SourceASR
	r := NewReconciler(transcripts, jobStore)

	for range 3 {
		res, err := r.Poll(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDone, res.Status)
	}
	assert.Len(t, transcripts.recs, 1)
}

func TestReconciler_ErrorStatusCarriesManualFallback(t *testing.T) {
	jobStore := newFakeJobs()
	job := storedJob(jobStore, jobs.StatusError)
	job.ErrorMessage = "The video is 120 minutes long; the limit is 60 minutes"
	r := NewReconciler(newFakeTranscripts(), jobStore)

	res, err := r.Poll(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "120 minutes")
	assert.Contains(t, res.Message, "paste the transcript manually")
}
