package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration, read from environment
// variables with sensible defaults.
//
// Environment Variables:
//
// HTTP:
// - HTTP_ADDR: listen address (default: :8080)
//
// Storage:
// - DB_PATH: sqlite database path (default: /app/data/transcripts.db)
//
// Acquisition:
// - ASYNC_TRANSCRIPTION_ENABLED: allow falling back to audio transcription
//   jobs when no captions exist (default: true)
//
// Worker:
// - WORKER_POLL_INTERVAL_SECONDS: idle sleep between claim attempts (default: 5)
// - TRANSCRIBE_TIMEOUT_SECONDS: bound on one speech-recognition run (default: 600)
// - MAX_MEDIA_DURATION_SECONDS: reject longer media before download (default: 3600)
// - WHISPER_MODEL: speech-recognition model selector (default: base)
// - SCRATCH_DIR: audio scratch directory (default: system temp dir)
//
// Maintenance:
// - MAINTENANCE_CRON: schedule for the sweep (default: "*/10 * * * *")
// - JOB_RETENTION_DAYS: terminal jobs older than this are deleted (default: 7)
// - PROCESSING_STALE_AFTER_SECONDS: processing jobs idle longer than this
//   are requeued (default: 1800)
//
// System:
// - LOG_LEVEL: debug|info|warn|error (default: info)

type Config struct {
	HTTP        HTTPConfig
	Store       StoreConfig
	Acquire     AcquireConfig
	Worker      WorkerConfig
	Maintenance MaintenanceConfig
	LogLevel    string
}

type HTTPConfig struct {
	Addr string
}

type StoreConfig struct {
	DBPath string
}

type AcquireConfig struct {
	AsyncEnabled bool
}

type WorkerConfig struct {
	PollInterval       time.Duration
	TranscribeTimeout  time.Duration
	MaxDurationSeconds int
	WhisperModel       string
	ScratchDir         string
}

type MaintenanceConfig struct {
	CronExpr             string
	JobRetention         time.Duration
	ProcessingStaleAfter time.Duration
}

// NewFromEnv creates a Config from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnvString("HTTP_ADDR", ":8080"),
		},
		Store: StoreConfig{
			DBPath: getEnvString("DB_PATH", "/app/data/transcripts.db"),
		},
		Acquire: AcquireConfig{
			AsyncEnabled: getEnvBool("ASYNC_TRANSCRIPTION_ENABLED", true),
		},
		Worker: WorkerConfig{
			PollInterval:       time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 5)) * time.Second,
			TranscribeTimeout:  time.Duration(getEnvInt("TRANSCRIBE_TIMEOUT_SECONDS", 600)) * time.Second,
			MaxDurationSeconds: getEnvInt("MAX_MEDIA_DURATION_SECONDS", 3600),
			WhisperModel:       getEnvString("WHISPER_MODEL", "base"),
			ScratchDir:         getEnvString("SCRATCH_DIR", os.TempDir()),
		},
		Maintenance: MaintenanceConfig{
			CronExpr:             getEnvString("MAINTENANCE_CRON", "*/10 * * * *"),
			JobRetention:         time.Duration(getEnvInt("JOB_RETENTION_DAYS", 7)) * 24 * time.Hour,
			ProcessingStaleAfter: time.Duration(getEnvInt("PROCESSING_STALE_AFTER_SECONDS", 1800)) * time.Second,
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Store.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Worker.PollInterval <= 0 {
		return fmt.Errorf("WORKER_POLL_INTERVAL_SECONDS must be positive")
	}
	if c.Worker.TranscribeTimeout <= 0 {
		return fmt.Errorf("TRANSCRIBE_TIMEOUT_SECONDS must be positive")
	}
	if c.Worker.MaxDurationSeconds < 0 {
		return fmt.Errorf("MAX_MEDIA_DURATION_SECONDS must not be negative")
	}
	if _, err := cron.ParseStandard(c.Maintenance.CronExpr); err != nil {
		return fmt.Errorf("invalid MAINTENANCE_CRON: %w", err)
	}
	if c.Maintenance.ProcessingStaleAfter <= 0 {
		return fmt.Errorf("PROCESSING_STALE_AFTER_SECONDS must be positive")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
