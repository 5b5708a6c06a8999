package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/M4dhxv/Financial-Analysis/internal/config"
	"github.com/M4dhxv/Financial-Analysis/internal/core"
	"github.com/M4dhxv/Financial-Analysis/internal/logging"
	"github.com/M4dhxv/Financial-Analysis/internal/store"
	"github.com/M4dhxv/Financial-Analysis/internal/telemetry"
	"github.com/M4dhxv/Financial-Analysis/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	runStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open run store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var metrics *telemetry.Metrics
	var recorder core.Recorder
	if cfg.Metrics.Enabled {
		metrics = telemetry.New(cfg.Metrics.Runtime)
		recorder = metrics
	}

	service := core.NewService(runStore, core.ServiceOptions{
		Pipeline: core.PipelineOptions{
			Thresholds: cfg.Detection.Thresholds(),
			Workers:    cfg.Analysis.EngineWorkers,
		},
		MaxConcurrent: cfg.Analysis.MaxConcurrent,
		MaxWait:       cfg.Analysis.MaxWaitTime,
		RunTimeout:    cfg.Analysis.Timeout,
		TopMovers:     cfg.Analysis.TopMovers,
	}, recorder)

	server := web.NewServer(service, cfg, metrics)

	retentionCtx, stopRetention := context.WithCancel(ctx)
	defer stopRetention()
	go service.StartRetentionScheduler(retentionCtx, core.RetentionConfig{
		MaxAge:        cfg.Database.RetentionMaxAge,
		CheckInterval: cfg.Database.RetentionInterval,
	})

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()

		slog.Info("shutting down...")
		stopRetention()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for analyses to complete", "active", status.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("analyses did not complete in time", "error", err)
			} else {
				slog.Info("all analyses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		closeStore()
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}

// openStore connects to PostgreSQL when DATABASE_URL is set and falls back
// to the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (core.RunStore, func(), error) {
	if cfg.Database.URL == "" {
		slog.Info("using in-memory run store", "max_runs", cfg.Database.MemoryRuns)
		return store.NewMemory(cfg.Database.MemoryRuns), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	pg := store.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
