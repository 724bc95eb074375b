package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashuroute/tashuroute/internal/api"
	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/auth"
	"github.com/tashuroute/tashuroute/internal/favorite"
	"github.com/tashuroute/tashuroute/internal/metrics"
	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/route"
	"github.com/tashuroute/tashuroute/internal/station"
	"github.com/tashuroute/tashuroute/internal/station/tashu"
)

// testAuthService creates an auth service for testing.
func testAuthService() *auth.Service {
	return auth.NewService(auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.tashuroute.kr",
		Audience:   "tashuroute-api",
	}))
}

func testRouterConfig() api.RouterConfig {
	logger := zerolog.New(io.Discard)
	registry := resilience.NewRegistry()

	stations := station.NewService(station.ServiceConfig{
		Provider: tashu.NewClient(tashu.ClientConfig{Registry: registry}),
		Logger:   logger,
	})
	prom := metrics.New()

	return api.RouterConfig{
		Version:        "test",
		BuildTime:      "2026-01-01T00:00:00Z",
		Logger:         logger,
		MetricsHandler: prom.Handler(),
		AuthService:    testAuthService(),
		StationService: stations,
		RouteService:   route.NewService(route.ServiceConfig{Stations: stations, Logger: logger}),
		PlaceService: place.NewService(place.ServiceConfig{
			Provider: noPlaces{},
			Stations: stations,
			Logger:   logger,
		}),
		FavoriteStore: favorite.NewStore(favorite.StoreConfig{
			Repository: favorite.NewInMemoryRepository(),
			Logger:     logger,
		}),
		UpstreamHealths: registry,
	}
}

func newTestRouter() http.Handler {
	return api.NewRouter(testRouterConfig())
}

type noPlaces struct{}

func (noPlaces) Name() string { return "none" }

func (noPlaces) Search(_ context.Context, _ string) ([]place.Place, error) {
	return []place.Place{}, nil
}

// issueToken registers a device through the API and returns its token.
func issueToken(t *testing.T, router http.Handler) auth.TokenResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/device", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.NotEmpty(t, health.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PublicStationRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{name: "list", method: http.MethodGet, target: "/v1/stations", want: http.StatusOK},
		{name: "get", method: http.MethodGet, target: "/v1/stations/TASHU005", want: http.StatusOK},
		{name: "nearest", method: http.MethodGet, target: "/v1/stations:nearest?lat=36.3742&lon=127.3606", want: http.StatusOK},
		{name: "nearest without location", method: http.MethodGet, target: "/v1/stations:nearest", want: http.StatusBadRequest},
		{name: "plan", method: http.MethodPost, target: "/v1/routes:plan", body: `{"origin":{"lat":36.3742,"lon":127.3606},"destination":{"lat":36.3504,"lon":127.3847}}`, want: http.StatusOK},
		{name: "places", method: http.MethodGet, target: "/v1/places?query=kaist", want: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, target: "/v1/bikes", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = http.NoBody
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRouter_FavoritesRequireAuth(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/me/favorites", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_FavoritesPerDevice(t *testing.T) {
	router := newTestRouter()
	alice := issueToken(t, router)
	bob := issueToken(t, router)
	require.NotEqual(t, alice.DeviceID, bob.DeviceID)

	req := httptest.NewRequest(http.MethodPost, "/v1/me/favorites", strings.NewReader(`{"stationId":"TASHU002"}`))
	req.Header.Set("Authorization", "Bearer "+alice.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	list := func(token string) models.FavoriteList {
		req := httptest.NewRequest(http.MethodGet, "/v1/me/favorites", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var out models.FavoriteList
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	assert.Len(t, list(alice.AccessToken).Favorites, 1)
	assert.Empty(t, list(bob.AccessToken).Favorites)
}

// heldPlaces blocks the query "slow" until release is closed or the search is
// cancelled.
type heldPlaces struct {
	started chan struct{}
	release chan struct{}
}

func (p *heldPlaces) Name() string { return "held" }

func (p *heldPlaces) Search(ctx context.Context, query string) ([]place.Place, error) {
	if query != "slow" {
		return []place.Place{}, nil
	}
	close(p.started)
	select {
	case <-p.release:
		return []place.Place{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRouter_PlaceSearchIsPerCaller(t *testing.T) {
	router := newTestRouter()
	alice := issueToken(t, router)
	bob := issueToken(t, router)

	tests := []struct {
		name   string
		first  http.Header
		second http.Header
	}{
		{
			name:   "devices",
			first:  http.Header{"Authorization": {"Bearer " + alice.AccessToken}},
			second: http.Header{"Authorization": {"Bearer " + bob.AccessToken}},
		},
		{
			name:   "anonymous sessions",
			first:  http.Header{middleware.SessionHeader: {"tab-a"}},
			second: http.Header{middleware.SessionHeader: {"tab-b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			held := &heldPlaces{started: make(chan struct{}), release: make(chan struct{})}
			cfg := testRouterConfig()
			cfg.PlaceService = place.NewService(place.ServiceConfig{
				Provider: held,
				Stations: cfg.StationService,
				Logger:   cfg.Logger,
			})
			router := api.NewRouter(cfg)

			search := func(query string, header http.Header) *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodGet, "/v1/places?query="+query, http.NoBody)
				req.RemoteAddr = "192.0.2.1:1234"
				for k, v := range header {
					req.Header[k] = v
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				return w
			}

			first := make(chan *httptest.ResponseRecorder, 1)
			go func() { first <- search("slow", tt.first) }()

			select {
			case <-held.started:
			case <-time.After(2 * time.Second):
				t.Fatal("first search never reached the provider")
			}

			assert.Equal(t, http.StatusOK, search("other", tt.second).Code)
			close(held.release)

			select {
			case w := <-first:
				assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
			case <-time.After(2 * time.Second):
				t.Fatal("first search did not return")
			}
		})
	}
}

func TestRouter_RefreshRequiresAuth(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := issueToken(t, router)
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	router := newTestRouter()

	var last int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/device", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestRouter_RequireTLS(t *testing.T) {
	cfg := testRouterConfig()
	cfg.RequireTLS = true
	router := api.NewRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Forwarded-Proto", "http")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
