package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"transcript-fetcher/internal/jobs"
	"transcript-fetcher/internal/transcript"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteStore backs both the transcript cache and the job store with a
// single sqlite database. The request handlers and the worker share it
// concurrently; WAL mode plus a single connection keeps writes serialized.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ transcript.Store = (*SQLiteStore)(nil)
	_ jobs.Store       = (*SQLiteStore)(nil)
)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) GetTranscript(ctx context.Context, videoID string) (*transcript.Record, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT video_id, text, source, duration_seconds, created_at
		 FROM transcripts
		 WHERE video_id = ?`,
		videoID,
	)

	var rec transcript.Record
	var source string
	if err := row.Scan(&rec.VideoID, &rec.Text, &source, &rec.DurationSeconds, &rec.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	rec.Source = transcript.Source(source)
	return &rec, true, nil
}

func (s *SQLiteStore) UpsertTranscript(ctx context.Context, rec *transcript.Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if !rec.Usable() {
		return fmt.Errorf("transcript for %s is below the minimum viable length", rec.VideoID)
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (video_id, text, source, duration_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET
			text=excluded.text,
			source=excluded.source,
			duration_seconds=excluded.duration_seconds`,
		rec.VideoID,
		rec.Text,
		string(rec.Source),
		rec.DurationSeconds,
		createdAt,
	)
	return err
}

func (s *SQLiteStore) SaveTranscriptIfAbsent(ctx context.Context, rec *transcript.Record) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if !rec.Usable() {
		return fmt.Errorf("transcript for %s is below the minimum viable length", rec.VideoID)
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (video_id, text, source, duration_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO NOTHING`,
		rec.VideoID,
		rec.Text,
		string(rec.Source),
		rec.DurationSeconds,
		createdAt,
	)
	return err
}

func (s *SQLiteStore) CreateJob(ctx context.Context, job *jobs.TranscriptJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcript_jobs (
			job_id, video_id, status, result_text, result_source, duration_seconds, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.VideoID,
		string(job.Status),
		job.ResultText,
		string(job.ResultSource),
		job.DurationSeconds,
		job.ErrorMessage,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	return err
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*jobs.TranscriptJob, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT job_id, video_id, status, result_text, result_source, duration_seconds, error_message, created_at, updated_at
		 FROM transcript_jobs
		 WHERE job_id = ?`,
		jobID,
	)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, jobs.ErrNotFound
	}
	return job, err
}

// ClaimNextPending selects the oldest pending job and moves it to
// processing. The update is guarded on status = pending, so a concurrent
// claimer loses the race cleanly instead of double-claiming.
func (s *SQLiteStore) ClaimNextPending(ctx context.Context) (*jobs.TranscriptJob, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(
		ctx,
		`SELECT job_id, video_id, status, result_text, result_source, duration_seconds, error_message, created_at, updated_at
		 FROM transcript_jobs
		 WHERE status = ?
		 ORDER BY created_at ASC, job_id ASC
		 LIMIT 1`,
		string(jobs.StatusPending),
	)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		err = nil
		_ = tx.Rollback()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(
		ctx,
		`UPDATE transcript_jobs SET status = ?, updated_at = ?
		 WHERE job_id = ? AND status = ?`,
		string(jobs.StatusProcessing),
		now,
		job.ID,
		string(jobs.StatusPending),
	)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost the claim race; the caller just polls again.
		_ = tx.Rollback()
		return nil, nil
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	job.Status = jobs.StatusProcessing
	job.UpdatedAt = now
	return job, nil
}

func (s *SQLiteStore) CompleteJob(ctx context.Context, jobID, text string, durationSeconds int) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE transcript_jobs
		 SET status = ?, result_text = ?, result_source = ?, duration_seconds = ?, error_message = '', updated_at = ?
		 WHERE job_id = ? AND status = ?`,
		string(jobs.StatusDone),
		text,
		string(transcript.SourceASR),
		durationSeconds,
		time.Now().UTC(),
		jobID,
		string(jobs.StatusProcessing),
	)
	if err != nil {
		return err
	}
	return requireTransition(res, jobID, jobs.StatusDone)
}

func (s *SQLiteStore) FailJob(ctx context.Context, jobID, message string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE transcript_jobs
		 SET status = ?, error_message = ?, updated_at = ?
		 WHERE job_id = ? AND status = ?`,
		string(jobs.StatusError),
		message,
		time.Now().UTC(),
		jobID,
		string(jobs.StatusProcessing),
	)
	if err != nil {
		return err
	}
	return requireTransition(res, jobID, jobs.StatusError)
}

func (s *SQLiteStore) RequeueStuckProcessing(ctx context.Context, staleBefore time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE transcript_jobs SET status = ?, updated_at = ?
		 WHERE status = ? AND updated_at <= ?`,
		string(jobs.StatusPending),
		time.Now().UTC(),
		string(jobs.StatusProcessing),
		staleBefore.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteTerminalJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM transcript_jobs
		 WHERE status IN (?, ?) AND updated_at <= ?`,
		string(jobs.StatusDone),
		string(jobs.StatusError),
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// requireTransition turns a zero-row guarded update into an error so illegal
// transitions (terminal job, unknown ID, job not yet claimed) surface to the
// caller instead of silently doing nothing.
func requireTransition(res sql.Result, jobID string, to jobs.Status) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %s is not in processing state, refusing transition to %s", jobID, to)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*jobs.TranscriptJob, error) {
	var job jobs.TranscriptJob
	var status, resultSource string
	if err := row.Scan(
		&job.ID,
		&job.VideoID,
		&status,
		&job.ResultText,
		&resultSource,
		&job.DurationSeconds,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = jobs.Status(status)
	job.ResultSource = transcript.Source(resultSource)
	return &job, nil
}
