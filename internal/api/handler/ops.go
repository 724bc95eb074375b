// Package handler provides HTTP handlers for the station API.
package handler

import (
	"net/http"
	"time"

	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/station"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	stations  *station.Service
	upstreams *resilience.Registry
}

// OpsHandlerConfig holds the OpsHandler dependencies.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string
	Stations  *station.Service
	Upstreams *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	upstreams := cfg.Upstreams
	if upstreams == nil {
		upstreams = resilience.NewRegistry()
	}
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		stations:  cfg.Stations,
		upstreams: upstreams,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. The service is ready once a
// station snapshot is loaded; the first call triggers the load.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	dir, err := h.stations.Directory(r.Context())
	if err != nil {
		health := models.Health{
			Status:  models.HealthStatusFail,
			Time:    models.Timestamp(time.Now()),
			Details: map[string]interface{}{"error": "station snapshot unavailable"},
		}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"stations": dir.Len(),
			"provider": dir.Provider(),
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - snapshot and upstream status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := models.NewSnapshotStatus(h.stations.CacheStatus())

	health := h.upstreams.GetAllHealth()
	providers := make([]models.ProviderStatus, len(health))
	overall := models.HealthStatusOK
	for i, ph := range health {
		providers[i] = models.NewProviderStatus(ph)
		if providers[i].Status != models.HealthStatusOK {
			overall = models.HealthStatusDegraded
		}
	}
	switch {
	case !snapshot.Loaded:
		overall = models.HealthStatusFail
	case snapshot.Stale:
		overall = models.HealthStatusDegraded
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:    overall,
		Time:      models.Timestamp(time.Now()),
		Snapshot:  snapshot,
		Providers: providers,
	})
}
