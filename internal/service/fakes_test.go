package service

import (
	"context"
	"sort"
	"time"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/transcript"
)

type fakeTranscripts struct {
	recs        map[string]*transcript.Record
	getErr      error
	upsertErr   error
	lookupCalls int
	upsertCalls int
	absentCalls int
}

func newFakeTranscripts() *fakeTranscripts {
	return &fakeTranscripts{recs: make(map[string]*transcript.Record)}
}

func (f *fakeTranscripts) GetTranscript(_ context.Context, videoID string) (*transcript.Record, bool, error) {
	f.lookupCalls++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	rec, ok := f.recs[videoID]
	return rec, ok, nil
}

func (f *fakeTranscripts) UpsertTranscript(_ context.Context, rec *transcript.Record) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.recs[rec.VideoID] = rec
	return nil
}

func (f *fakeTranscripts) SaveTranscriptIfAbsent(_ context.Context, rec *transcript.Record) error {
	f.absentCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if _, ok := f.recs[rec.VideoID]; ok {
		return nil
	}
	f.recs[rec.VideoID] = rec
	return nil
}

type fakeJobs struct {
	jobs      map[string]*jobs.TranscriptJob
	createErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*jobs.TranscriptJob)}
}

func (f *fakeJobs) CreateJob(_ context.Context, job *jobs.TranscriptJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobs) GetJob(_ context.Context, jobID string) (*jobs.TranscriptJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) ClaimNextPending(_ context.Context) (*jobs.TranscriptJob, error) {
	var pending []*jobs.TranscriptJob
	for _, job := range f.jobs {
		if job.Status == jobs.StatusPending {
			pending = append(pending, job)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	claimed := pending[0]
	claimed.Status = jobs.StatusProcessing
	claimed.UpdatedAt = time.Now().UTC()
	copied := *claimed
	return &copied, nil
}

func (f *fakeJobs) CompleteJob(_ context.Context, jobID, text string, durationSeconds int) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return jobs.ErrNotFound
	}
	job.Status = jobs.StatusDone
	job.ResultText = text
	job.ResultSource = transcript.SourceASR
	job.DurationSeconds = durationSeconds
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeJobs) FailJob(_ context.Context, jobID, message string) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return jobs.ErrNotFound
	}
	job.Status = jobs.StatusError
	job.ErrorMessage = message
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeJobs) RequeueStuckProcessing(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeJobs) DeleteTerminalJobsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) FastExtract(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}
