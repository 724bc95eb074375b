package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tashuroute/tashuroute/internal/api/middleware"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"implicit ok", 0, "info"},
		{"no content", http.StatusNoContent, "info"},
		{"station missing", http.StatusNotFound, "warn"},
		{"rate limited", http.StatusTooManyRequests, "warn"},
		{"feed malformed", http.StatusBadGateway, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("{}"))
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/stations", http.NoBody)
			req.Header.Set("User-Agent", "tashu-app/2.1")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entry := decodeLogLine(t, &buf)
			wantStatus := tt.status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "request completed", entry["message"])
			assert.Equal(t, float64(wantStatus), entry["status"])
			assert.Equal(t, float64(2), entry["bytes"])
			assert.Equal(t, "tashu-app/2.1", entry["user_agent"])
			assert.Contains(t, entry, "duration")
		})
	}
}

func TestLogger_RoutePatternAndRequestID(t *testing.T) {
	var buf bytes.Buffer

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger(zerolog.New(&buf)))
	r.Get("/v1/me/favorites/{stationId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me/favorites/TASHU004", http.NoBody)
	req.Header.Set("X-Request-Id", "req_client_1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "/v1/me/favorites/TASHU004", entry["path"])
	assert.Equal(t, "/v1/me/favorites/{stationId}", entry["route"])
	assert.Equal(t, "req_client_1", entry["request_id"])
}

func TestLogger_TraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tracetest.NewSpanRecorder()))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	handler := middleware.Tracing("tashuroute-test")(
		middleware.Logger(zerolog.New(&buf))(okHandler()),
	)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/places", http.NoBody))

	entry := decodeLogLine(t, &buf)
	assert.Len(t, entry["trace_id"], 32)
	assert.Len(t, entry["span_id"], 16)
}
