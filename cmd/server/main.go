// Package main is the entry point for the Salescast forecasting service.
// The service ingests monthly sales histories per client and article,
// classifies series lifecycle, produces per-series forecasts and serves
// portfolio-level aggregations over a REST API. Completed runs are
// persisted to SQLite and optionally archived to S3.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/salescast/internal/config"
	"github.com/aristath/salescast/internal/database"
	"github.com/aristath/salescast/internal/events"
	"github.com/aristath/salescast/internal/modules/archive"
	"github.com/aristath/salescast/internal/modules/engine"
	enginehandlers "github.com/aristath/salescast/internal/modules/engine/handlers"
	"github.com/aristath/salescast/internal/modules/runs"
	runshandlers "github.com/aristath/salescast/internal/modules/runs/handlers"
	"github.com/aristath/salescast/internal/scheduler"
	"github.com/aristath/salescast/internal/server"
	"github.com/aristath/salescast/pkg/logger"
)

func main() {
	// Load configuration first to get the log level. Configuration comes
	// from environment variables, optionally via a .env file.
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty || cfg.DevMode,
	})

	log.Info().Msg("Starting Salescast")

	// Run history database. A single SQLite file holds run summaries and
	// their msgpack payloads.
	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run database")
	}
	defer db.Close()

	store := runs.NewStore(db.Conn(), log)
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize run store")
	}

	// Event bus feeds the WebSocket stream with run lifecycle events.
	bus := events.NewBus(log)

	// Forecast engine with its worker pool. Request options can override
	// the configured defaults per run.
	service := engine.NewService(
		engine.NewWorkerPool(cfg.ForecastWorkers),
		bus,
		engine.Defaults{
			DormancyThreshold: cfg.DormancyThreshold,
			TopN:              cfg.TopN,
			HoldoutSize:       cfg.HoldoutSize,
		},
		log,
	)

	// Archiving is optional: without a bucket the endpoints report it as
	// unconfigured and the sweep job is never registered. A broken S3
	// setup must not keep forecasts from being served.
	var archiveSvc *archive.Service
	if cfg.ArchiveEnabled() {
		archiveSvc, err = archive.NewService(context.Background(), archive.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}, store, bus, log)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize archive service, archiving disabled")
			archiveSvc = nil
		} else {
			log.Info().Str("bucket", cfg.S3Bucket).Msg("Archive service initialized")
		}
	}

	var archiver runshandlers.Archiver
	if archiveSvc != nil {
		archiver = archiveSvc
	}

	// Background maintenance: retention cleanup daily, WAL checkpoints
	// every six hours, archive sweep hourly when a bucket is configured.
	sched := scheduler.New(log)
	if err := sched.AddJob("0 30 3 * * *", scheduler.NewRetentionJob(store, cfg.RetentionDuration(), log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register retention job")
	}
	if err := sched.AddJob("0 0 */6 * * *", scheduler.NewWALCheckpointJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	if archiveSvc != nil {
		if err := sched.AddJob("0 15 * * * *", scheduler.NewArchiveSweepJob(archiveSvc, scheduler.DefaultSweepAge, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register archive sweep job")
		}
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:             log,
		Config:          cfg,
		DB:              db,
		Bus:             bus,
		RunStore:        store,
		ForecastHandler: enginehandlers.NewHandler(service, store, log),
		RunsHandler:     runshandlers.NewHandler(store, archiver, log),
	})

	// Start server in goroutine so the main goroutine can wait for
	// shutdown signals.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Stop the scheduler first so no maintenance job races the closing
	// database, then drain in-flight HTTP requests.
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
