// Package main provides the entrypoint for the TashuRoute API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api"
	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/auth"
	"github.com/tashuroute/tashuroute/internal/config"
	"github.com/tashuroute/tashuroute/internal/database"
	"github.com/tashuroute/tashuroute/internal/favorite"
	"github.com/tashuroute/tashuroute/internal/metrics"
	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/place/kakao"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/report"
	"github.com/tashuroute/tashuroute/internal/route"
	"github.com/tashuroute/tashuroute/internal/station"
	"github.com/tashuroute/tashuroute/internal/station/tashu"
	"github.com/tashuroute/tashuroute/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tashuroute-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TashuRoute API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.UsesDevSigningKey() {
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	if err := report.Setup(report.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Env,
		Release:     Version,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize error reporting")
	}
	defer report.Flush()

	// Initialize OpenTelemetry
	ctx := context.Background()
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	domainMetrics := metrics.New()

	// Storage: Postgres when enabled, otherwise process memory.
	var (
		snapshots station.SnapshotStore = station.NewInMemorySnapshotStore()
		favRepo   favorite.Repository   = favorite.NewInMemoryRepository()
	)
	if cfg.DatabaseEnabled {
		pool, err := database.Connect(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")

		snapshots = station.NewPostgresSnapshotStore(pool, 0)
		favRepo = favorite.NewPostgresRepository(pool)
	} else {
		log.Warn().Msg("database disabled - favorites are kept in memory")
	}

	upstreams := resilience.NewRegistry()

	tashuClient := tashu.NewClient(tashu.ClientConfig{
		BaseURL:  cfg.TashuBaseURL,
		APIKey:   cfg.TashuAPIKey,
		Registry: upstreams,
	})
	if tashuClient.IsDemo() {
		log.Warn().Msg("TASHU_API_KEY not set - serving demo stations")
	}

	stationService := station.NewService(station.ServiceConfig{
		Provider: tashuClient,
		Store:    snapshots,
		Logger:   log,
		CacheTTL: cfg.StationCacheTTL,
		OnRefresh: func(dir *station.Directory, result station.NormalizeResult) {
			domainMetrics.ObserveDirectory(dir, result)
			domainMetrics.ObserveUpstreams(upstreams.GetAllHealth())
		},
	})
	log.Info().Msg("station service initialized")

	if cfg.KakaoAPIKey == "" {
		log.Warn().Msg("KAKAO_REST_API_KEY not set - place search unavailable")
	}
	placeService := place.NewService(place.ServiceConfig{
		Provider: kakao.NewClient(kakao.ClientConfig{
			APIKey:   cfg.KakaoAPIKey,
			Registry: upstreams,
		}),
		Stations: stationService,
		Logger:   log,
		CacheTTL: cfg.PlaceCacheTTL,
	})

	authService := auth.NewService(auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
	}))

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        httpMetrics,
		MetricsHandler: domainMetrics.Handler(),
		RequireTLS:     cfg.RequireTLS,
		SentryEnabled:  cfg.SentryDSN != "",
		AuthService:    authService,
		StationService: stationService,
		RouteService: route.NewService(route.ServiceConfig{
			Stations: stationService,
			Logger:   log,
		}),
		PlaceService: placeService,
		FavoriteStore: favorite.NewStore(favorite.StoreConfig{
			Repository: favRepo,
			Logger:     log,
		}),
		UpstreamHealths: upstreams,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
