package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/station"
)

func TestOpsHandler_HealthCheck(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodGet, "/v1/ops/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	health := decode[models.Health](t, rec)
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestOpsHandler_ReadinessLoadsSnapshot(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.False(t, f.stations.CacheStatus().HasData)

	rec := f.do(http.MethodGet, "/v1/ops/ready", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.stations.CacheStatus().HasData)
	health := decode[models.Health](t, rec)
	assert.EqualValues(t, 8, health.Details["stations"])
}

func TestOpsHandler_NotReadyWithoutSnapshot(t *testing.T) {
	f := newFixture(t, &failingProvider{err: station.ErrProviderUnavailable}, nil)

	rec := f.do(http.MethodGet, "/v1/ops/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	health := decode[models.Health](t, rec)
	assert.Equal(t, models.HealthStatusFail, health.Status)
}

func TestOpsHandler_SystemStatus(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodGet, "/v1/ops/status", "")
	status := decode[models.SystemStatus](t, rec)
	assert.Equal(t, models.HealthStatusFail, status.Status)
	assert.False(t, status.Snapshot.Loaded)

	f.do(http.MethodGet, "/v1/stations", "")

	rec = f.do(http.MethodGet, "/v1/ops/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	status = decode[models.SystemStatus](t, rec)
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.True(t, status.Snapshot.Loaded)
	assert.Equal(t, "tashu-demo", status.Snapshot.Provider)
	assert.Equal(t, 8, status.Snapshot.StationCount)
	assert.NotNil(t, status.Snapshot.FetchedAt)
}
