package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records OpenTelemetry HTTP server instruments per matched route.
type Metrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	active   metric.Int64UpDownCounter
	size     metric.Int64Histogram
}

// NewMetrics registers the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithProvider(otel.GetMeterProvider())
}

// NewMetricsWithProvider registers the instruments on provider.
func NewMetricsWithProvider(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(instrumentationName)

	var m Metrics
	var errs [4]error
	m.duration, errs[0] = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time spent serving a request"),
		metric.WithUnit("s"))
	m.requests, errs[1] = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests served, by route and status"),
		metric.WithUnit("{request}"))
	m.active, errs[2] = meter.Int64UpDownCounter("http.server.requests_in_flight",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"))
	m.size, errs[3] = meter.Int64Histogram("http.server.response.size",
		metric.WithDescription("Response body size"),
		metric.WithUnit("By"))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

// Middleware records each request. The route label is the chi pattern, so
// /v1/stations/TASHU001 and /v1/stations/TASHU002 land in one series.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			method := attribute.String("http.request.method", r.Method)

			m.active.Add(ctx, 1, metric.WithAttributes(method))
			defer m.active.Add(ctx, -1, metric.WithAttributes(method))

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			set := metric.WithAttributeSet(attribute.NewSet(
				method,
				attribute.String("http.route", routePattern(r)),
				attribute.String("http.response.status_code", strconv.Itoa(rec.statusCode)),
				attribute.Bool("error", rec.statusCode >= http.StatusBadRequest),
			))
			m.duration.Record(ctx, time.Since(start).Seconds(), set)
			m.requests.Add(ctx, 1, set)
			m.size.Record(ctx, rec.written, set)
		})
	}
}
