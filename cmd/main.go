package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"transcript-fetcher/internal/config"
	"transcript-fetcher/internal/maintenance"
	"transcript-fetcher/internal/media"
	"transcript-fetcher/internal/persistence"
	"transcript-fetcher/internal/server"
	"transcript-fetcher/internal/service"
	"transcript-fetcher/internal/worker"
	"transcript-fetcher/pkg/log"
)

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

type jobRunner interface {
	Run(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type stdHTTPServer struct {
	srv *http.Server
}

func (s *stdHTTPServer) ListenAndServe(addr string) error {
	s.srv.Addr = addr
	return s.srv.ListenAndServe()
}

func (s *stdHTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.LogLevel))

	store, err := persistence.NewSQLiteStore(cfg.Store.DBPath)
	if err != nil {
		log.Fatal("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := os.MkdirAll(cfg.Worker.ScratchDir, 0o755); err != nil {
		log.Fatal("Failed to create scratch dir: %v", err)
	}

	ytdlp := media.NewYTDLP()
	whisper := media.NewWhisperCLI(cfg.Worker.WhisperModel)

	coordinator := service.NewCoordinator(store, store, ytdlp, cfg.Acquire.AsyncEnabled)
	reconciler := service.NewReconciler(store, store)
	httpSrv := &stdHTTPServer{srv: &http.Server{Handler: server.New(coordinator, reconciler).Handler()}}

	wk := worker.New(store, ytdlp, whisper, ytdlp, worker.Config{
		PollInterval:       cfg.Worker.PollInterval,
		TranscribeTimeout:  cfg.Worker.TranscribeTimeout,
		MaxDurationSeconds: cfg.Worker.MaxDurationSeconds,
		ScratchDir:         cfg.Worker.ScratchDir,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := maintenance.NewSweeper(store, cfg.Maintenance.JobRetention, cfg.Maintenance.ProcessingStaleAfter)
	cronSched := cron.New()
	if _, err := cronSched.AddFunc(cfg.Maintenance.CronExpr, func() { sweeper.Sweep(ctx) }); err != nil {
		log.Fatal("Failed to schedule maintenance sweep: %v", err)
	}

	if err := runWithComponents(ctx, cfg, wk, cronSched, httpSrv); err != nil {
		log.Fatal("Service exited with error: %v", err)
	}
}

// runWithComponents wires the long-running pieces together and blocks until
// ctx is cancelled or one of them fails.
func runWithComponents(
	ctx context.Context,
	cfg *config.Config,
	wk jobRunner,
	cronSched cronEngine,
	httpSrv httpServer,
) error {
	cronSched.Start()
	defer cronSched.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening on %s", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return wk.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
