// Package main provides the entrypoint for the TashuRoute worker. The worker
// refreshes the station snapshot on a schedule or on Pub/Sub triggers and
// measures bike coverage around the city.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/config"
	"github.com/tashuroute/tashuroute/internal/database"
	"github.com/tashuroute/tashuroute/internal/metrics"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/report"
	"github.com/tashuroute/tashuroute/internal/station"
	"github.com/tashuroute/tashuroute/internal/station/tashu"
	"github.com/tashuroute/tashuroute/internal/telemetry"
	"github.com/tashuroute/tashuroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tashuroute-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TashuRoute worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := report.Setup(report.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Env,
		Release:     Version,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize error reporting")
	}
	defer report.Flush()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	// The worker shares snapshots with the API through Postgres.
	var snapshots station.SnapshotStore = station.NewInMemorySnapshotStore()
	if cfg.DatabaseEnabled {
		pool, err := database.Connect(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		snapshots = station.NewPostgresSnapshotStore(pool, 0)
		log.Info().Str("host", cfg.Database.Host).Msg("database connected")
	}

	domainMetrics := metrics.New()
	upstreams := resilience.NewRegistry()

	stationService := station.NewService(station.ServiceConfig{
		Provider: tashu.NewClient(tashu.ClientConfig{
			BaseURL:  cfg.TashuBaseURL,
			APIKey:   cfg.TashuAPIKey,
			Registry: upstreams,
		}),
		Store:     snapshots,
		Logger:    log,
		CacheTTL:  cfg.StationCacheTTL,
		OnRefresh: domainMetrics.ObserveDirectory,
	})

	refreshCfg := worker.DefaultRefreshConfig()
	refreshCfg.Concurrency = cfg.WorkerCount

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    refreshCfg,
		Logger:    log,
		Stations:  stationService,
		Recorder:  domainMetrics,
		Upstreams: upstreams,
	})

	// Worker also exposes health and metrics endpoints for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"jobs":    job.MetricsSnapshot(),
		})
	})
	mux.Handle("/metrics", domainMetrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	if cfg.PubSubProjectID != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			RefreshJob:       job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
				report.ReportError(err)
			}
		}()
	} else {
		go runScheduled(ctx, worker.NewDispatcher(job, log), cfg.RefreshInterval, log)
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// runScheduled dispatches a station refresh immediately and then every
// interval until ctx is cancelled.
func runScheduled(ctx context.Context, dispatcher *worker.Dispatcher, interval time.Duration, log zerolog.Logger) {
	msg, _ := json.Marshal(worker.RefreshMessage{JobType: worker.JobStationRefresh})

	log.Info().Dur("interval", interval).Msg("worker started without pubsub, refreshing on a timer")
	dispatcher.Dispatch(ctx, msg)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker context cancelled")
			return
		case <-ticker.C:
			dispatcher.Dispatch(ctx, msg)
		}
	}
}
