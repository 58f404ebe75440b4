package maintenance

import (
	"context"
	"time"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/pkg/log"
)

// Sweeper keeps the job table healthy: jobs stranded in processing by a
// worker crash are put back in the queue, and old terminal jobs are removed.
// It runs on a cron schedule from main but is a plain store client so it can
// be tested without cron.
type Sweeper struct {
	jobs       jobs.Store
	retention  time.Duration
	staleAfter time.Duration
}

func NewSweeper(jobStore jobs.Store, retention, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		jobs:       jobStore,
		retention:  retention,
		staleAfter: staleAfter,
	}
}

// Sweep runs one maintenance pass. Failures are logged and swallowed; the
// next scheduled run simply tries again.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now().UTC()

	if s.staleAfter > 0 {
		requeued, err := s.jobs.RequeueStuckProcessing(ctx, now.Add(-s.staleAfter))
		if err != nil {
			log.Error("requeue of stuck jobs failed: %v", err)
		} else if requeued > 0 {
			log.Warn("requeued %d jobs stuck in processing", requeued)
		}
	}

	if s.retention > 0 {
		deleted, err := s.jobs.DeleteTerminalJobsBefore(ctx, now.Add(-s.retention))
		if err != nil {
			log.Error("deletion of old terminal jobs failed: %v", err)
		} else if deleted > 0 {
			log.Info("deleted %d terminal jobs older than %s", deleted, s.retention)
		}
	}
}
