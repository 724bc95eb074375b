// Package metrics exposes station and upstream gauges in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"

	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/station"
)

// Refresh outcomes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the domain collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	stations          *prometheus.GaugeVec
	availableStations *prometheus.GaugeVec
	availableBikes    *prometheus.GaugeVec
	rejectedRecords   *prometheus.GaugeVec
	lastRefresh       *prometheus.GaugeVec
	refreshes         *prometheus.CounterVec
	coverageDistance  *prometheus.GaugeVec
	coverageReachable *prometheus.GaugeVec
	upstreamState     *prometheus.GaugeVec
}

// New creates collectors on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		stations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_stations",
			Help: "Number of valid stations in the current snapshot",
		}, []string{"provider"}),

		availableStations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_stations_with_bikes",
			Help: "Number of stations with at least one bike",
		}, []string{"provider"}),

		availableBikes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_bikes_available",
			Help: "Total bikes available across all stations",
		}, []string{"provider"}),

		rejectedRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_station_records_rejected",
			Help: "Number of feed records dropped by the last refresh",
		}, []string{"provider"}),

		lastRefresh: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_snapshot_fetched_timestamp_seconds",
			Help: "Unix time the current snapshot was fetched",
		}, []string{"provider"}),

		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tashu_refresh_total",
			Help: "Station refresh attempts by result",
		}, []string{"result"}),

		coverageDistance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_coverage_nearest_available_km",
			Help: "Distance from a coverage target to the nearest station with bikes",
		}, []string{"target"}),

		coverageReachable: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_coverage_reachable",
			Help: "Whether a coverage target has a station with bikes (1 = yes, 0 = no)",
		}, []string{"target"}),

		upstreamState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tashu_upstream_circuit_state",
			Help: "Upstream circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		}, []string{"upstream"}),
	}
}

// ObserveDirectory records a refreshed snapshot. It has the shape of a
// station.RefreshHook.
func (m *Metrics) ObserveDirectory(dir *station.Directory, result station.NormalizeResult) {
	provider := dir.Provider()
	withBikes, bikes := dir.AvailableCount()

	m.stations.WithLabelValues(provider).Set(float64(dir.Len()))
	m.availableStations.WithLabelValues(provider).Set(float64(withBikes))
	m.availableBikes.WithLabelValues(provider).Set(float64(bikes))
	m.rejectedRecords.WithLabelValues(provider).Set(float64(len(result.Rejected)))
	m.lastRefresh.WithLabelValues(provider).Set(float64(dir.FetchedAt().Unix()))
}

// RecordRefresh counts a refresh attempt.
func (m *Metrics) RecordRefresh(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// SetCoverage records the nearest-available distance for a target. When no
// station has bikes the distance series is removed.
func (m *Metrics) SetCoverage(target string, distanceKm float64, reachable bool) {
	if !reachable {
		m.coverageReachable.WithLabelValues(target).Set(0)
		m.coverageDistance.DeleteLabelValues(target)
		return
	}
	m.coverageReachable.WithLabelValues(target).Set(1)
	m.coverageDistance.WithLabelValues(target).Set(distanceKm)
}

// ObserveUpstreams records circuit breaker states.
func (m *Metrics) ObserveUpstreams(health []*resilience.ProviderHealth) {
	for _, h := range health {
		m.upstreamState.WithLabelValues(h.Name).Set(stateValue(h.CircuitState))
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Timeout: 10 * time.Second,
	})
}
