package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tashuroute/tashuroute/internal/api/middleware"
)

func newTestMetrics(t *testing.T) (*middleware.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := middleware.NewMetricsWithProvider(provider)
	require.NoError(t, err)
	return m, reader
}

func requestTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.server.request.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("http.route")
				status, _ := dp.Attributes.Value("http.response.status_code")
				totals[route.AsString()+" "+status.AsString()] += dp.Value
			}
		}
	}
	return totals
}

func TestNewMetrics(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

func TestMetrics_Middleware_CountsByRoute(t *testing.T) {
	metrics, reader := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/v1/stations/{stationId}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "stationId") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("OK"))
	})

	for _, id := range []string{"TASHU001", "TASHU002", "missing"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/stations/"+id, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	totals := requestTotals(t, reader)
	assert.Equal(t, int64(2), totals["/v1/stations/{stationId} 200"])
	assert.Equal(t, int64(1), totals["/v1/stations/{stationId} 404"])
}

func TestMetrics_Middleware_PassesThrough(t *testing.T) {
	metrics, _ := newTestMetrics(t)

	tests := []struct {
		name   string
		status int
	}{
		{"success", http.StatusOK},
		{"bad request", http.StatusBadRequest},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))

			req := httptest.NewRequest(http.MethodPost, "/v1/routes:plan", http.NoBody)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "body", w.Body.String())
		})
	}
}

func TestMetrics_Middleware_DefaultStatusCode(t *testing.T) {
	metrics, reader := newTestMetrics(t)

	handler := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("response"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), requestTotals(t, reader)["/test 200"])
}
