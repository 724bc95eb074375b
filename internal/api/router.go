// Package api provides the HTTP API for TashuRoute.
package api

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/handler"
	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/auth"
	"github.com/tashuroute/tashuroute/internal/favorite"
	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/route"
	"github.com/tashuroute/tashuroute/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// Metrics records OpenTelemetry HTTP metrics. Optional.
	Metrics *middleware.Metrics

	// MetricsHandler serves /metrics. Optional.
	MetricsHandler http.Handler

	// RequireTLS rejects plain HTTP requests.
	RequireTLS bool

	// SentryEnabled reports panics to Sentry before they are recovered.
	SentryEnabled bool

	AuthService     *auth.Service
	StationService  *station.Service
	RouteService    *route.Service
	PlaceService    *place.Service
	FavoriteStore   *favorite.Store
	UpstreamHealths *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tashuroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	if cfg.SentryEnabled {
		// Repanics so Recovery still writes the problem response.
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement (REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Stations:  cfg.StationService,
		Upstreams: cfg.UpstreamHealths,
	})
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	stationHandler := handler.NewStationHandler(cfg.StationService, cfg.Logger)
	routeHandler := handler.NewRouteHandler(cfg.RouteService, cfg.Logger)
	placeHandler := handler.NewPlaceHandler(cfg.PlaceService, cfg.Logger)
	favoriteHandler := handler.NewFavoriteHandler(cfg.FavoriteStore, cfg.StationService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)           // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/device", authHandler.RegisterDevice)
			r.With(authMiddleware).Post("/refresh", authHandler.RefreshToken)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Station endpoints (public) - standard rate limiting
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/stations", stationHandler.ListStations)
			r.Get("/stations:nearest", stationHandler.NearestStation)
			r.Get("/stations/{stationId}", stationHandler.GetStation)
		})

		// Planning and search call upstreams - strict rate limiting
		r.With(expensiveRateLimit, middleware.RequireJSON).Post("/routes:plan", routeHandler.PlanRoute)
		r.With(expensiveRateLimit, middleware.OptionalAuth(cfg.AuthService)).Get("/places", placeHandler.SearchPlaces)

		// Me endpoints (authenticated) - device-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByDevice(middleware.StandardRateLimit)) // 100 req/min per device
			r.Use(middleware.RequireJSON)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoriteHandler.ListFavorites)
				r.Post("/", favoriteHandler.AddFavorite)
				r.Delete("/", favoriteHandler.ClearFavorites)
				r.Route("/{stationId}", func(r chi.Router) {
					r.Get("/", favoriteHandler.GetFavorite)
					r.Delete("/", favoriteHandler.RemoveFavorite)
					r.Patch("/", favoriteHandler.UpdateNickname)
				})
			})
		})
	})

	return r
}
