package maintenance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/persistence"
)

func newTestStore(t *testing.T) *persistence.SQLiteStore {
	t.Helper()
	store, err := persistence.NewSQLiteStore(filepath.Join(t.TempDir(), "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSweeper_RequeuesStuckProcessingJobs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A job claimed long ago and never finished.
	require.NoError(t, store.CreateJob(ctx, &jobs.TranscriptJob{
		ID:        "job-stuck",
		VideoID:   "video000001",
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
		UpdatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}))
	claimed, err := store.ClaimNextPending(ctx)
	require.NoError(t, err)
	require.Equal(t, "job-stuck", claimed.ID)

	s := NewSweeper(store, 7*24*time.Hour, time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	s.Sweep(ctx)

	got, err := store.GetJob(ctx, "job-stuck")
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusPending, got.Status)
}

func TestSweeper_LeavesFreshProcessingAlone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, &jobs.TranscriptJob{
		ID:        "job-live",
		VideoID:   "video000001",
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}))
	_, err := store.ClaimNextPending(ctx)
	require.NoError(t, err)

	s := NewSweeper(store, 7*24*time.Hour, time.Hour)
	s.Sweep(ctx)

	got, err := store.GetJob(ctx, "job-live")
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusProcessing, got.Status)
}

func TestSweeper_ZeroThresholdsDisableSweeps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, &jobs.TranscriptJob{
		ID:        "job-old",
		VideoID:   "video000001",
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC().Add(-30 * 24 * time.Hour),
		UpdatedAt: time.Now().UTC().Add(-30 * 24 * time.Hour),
	}))
	claimed, err := store.ClaimNextPending(ctx)
	require.NoError(t, err)
	require.NoError(t, store.FailJob(ctx, claimed.ID, "failed"))

	s := NewSweeper(store, 0, 0)
	s.Sweep(ctx)

	got, err := store.GetJob(ctx, "job-old")
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusError, got.Status)
}
