package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tashuroute/tashuroute/internal/api/handler"
	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/auth"
	"github.com/tashuroute/tashuroute/internal/favorite"
	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/route"
	"github.com/tashuroute/tashuroute/internal/station"
	"github.com/tashuroute/tashuroute/internal/station/tashu"
)

const testDeviceID = "dev_test"

// failingProvider is a station feed that always fails.
type failingProvider struct {
	err error
}

func (p *failingProvider) Name() string { return "failing" }

func (p *failingProvider) FetchFeed(_ context.Context) (*station.Feed, error) {
	return nil, p.err
}

// fakePlaces answers keyword searches from a fixed table. The query "slow"
// blocks until its context is cancelled.
type fakePlaces struct {
	results map[string][]place.Place
	err     error

	mu      sync.Mutex
	started chan struct{}
}

func (p *fakePlaces) Name() string { return "fake" }

func (p *fakePlaces) Search(ctx context.Context, query string) ([]place.Place, error) {
	if query == "slow" {
		p.mu.Lock()
		if p.started != nil {
			close(p.started)
			p.started = nil
		}
		p.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.results[query], nil
}

type fixture struct {
	stations  *station.Service
	places    *place.Service
	favorites *favorite.Store
	auth      *auth.Service
	router    http.Handler
}

func newFixture(t *testing.T, provider station.Provider, places place.Provider) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	if provider == nil {
		provider = tashu.NewClient(tashu.ClientConfig{})
	}
	if places == nil {
		places = &fakePlaces{}
	}

	f := &fixture{
		stations: station.NewService(station.ServiceConfig{Provider: provider, Logger: logger}),
		favorites: favorite.NewStore(favorite.StoreConfig{
			Repository: favorite.NewInMemoryRepository(),
			Logger:     logger,
		}),
		auth: auth.NewService(auth.NewJWTService(auth.JWTConfig{
			SigningKey: "test-secret-key-for-testing-only",
			Issuer:     "https://api.tashuroute.kr",
			Audience:   "tashuroute-api",
		})),
	}
	f.places = place.NewService(place.ServiceConfig{Provider: places, Stations: f.stations, Logger: logger})

	ops := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Stations:  f.stations,
		Upstreams: resilience.NewRegistry(),
	})
	stations := handler.NewStationHandler(f.stations, logger)
	routes := handler.NewRouteHandler(route.NewService(route.ServiceConfig{Stations: f.stations, Logger: logger}), logger)
	search := handler.NewPlaceHandler(f.places, logger)
	favorites := handler.NewFavoriteHandler(f.favorites, f.stations, logger)
	tokens := handler.NewAuthHandler(f.auth, logger)

	r := chi.NewRouter()
	r.Get("/v1/ops/health", ops.HealthCheck)
	r.Get("/v1/ops/ready", ops.ReadinessCheck)
	r.Get("/v1/ops/status", ops.SystemStatus)
	r.Post("/v1/auth/device", tokens.RegisterDevice)
	r.With(asDevice).Post("/v1/auth/refresh", tokens.RefreshToken)
	r.Get("/v1/stations", stations.ListStations)
	r.Get("/v1/stations:nearest", stations.NearestStation)
	r.Get("/v1/stations/{stationId}", stations.GetStation)
	r.Post("/v1/routes:plan", routes.PlanRoute)
	r.Get("/v1/places", search.SearchPlaces)
	r.Route("/v1/me/favorites", func(r chi.Router) {
		r.Use(asDevice)
		r.Get("/", favorites.ListFavorites)
		r.Post("/", favorites.AddFavorite)
		r.Delete("/", favorites.ClearFavorites)
		r.Get("/{stationId}", favorites.GetFavorite)
		r.Delete("/{stationId}", favorites.RemoveFavorite)
		r.Patch("/{stationId}", favorites.UpdateNickname)
	})
	f.router = r
	return f
}

// asDevice authenticates every request as testDeviceID.
func asDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithDeviceID(r.Context(), testDeviceID)))
	})
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// emptyProvider serves a valid feed with no stations.
type emptyProvider struct{}

func (p *emptyProvider) Name() string { return "empty" }

func (p *emptyProvider) FetchFeed(_ context.Context) (*station.Feed, error) {
	return &station.Feed{Records: []station.RawRecord{}, Provider: "empty", FetchedAt: time.Now()}, nil
}
