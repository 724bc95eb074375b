package models

import (
	"time"

	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/station"
)

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status    HealthStatus     `json:"status"`
	Time      Timestamp        `json:"time"`
	Snapshot  SnapshotStatus   `json:"snapshot"`
	Providers []ProviderStatus `json:"providers"`
}

// SnapshotStatus describes the cached station snapshot.
type SnapshotStatus struct {
	Loaded       bool       `json:"loaded"`
	Provider     string     `json:"provider,omitempty"`
	StationCount int        `json:"stationCount"`
	FetchedAt    *Timestamp `json:"fetchedAt,omitempty"`
	ExpiresAt    *Timestamp `json:"expiresAt,omitempty"`
	Stale        bool       `json:"stale"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}

// NewSnapshotStatus converts a station cache status.
func NewSnapshotStatus(s station.CacheStatus) SnapshotStatus {
	out := SnapshotStatus{
		Loaded:       s.HasData,
		Provider:     s.Provider,
		StationCount: s.StationCount,
		Stale:        s.IsStale,
	}
	if s.HasData {
		out.FetchedAt = timestampPtr(s.FetchedAt)
		out.ExpiresAt = timestampPtr(s.ExpiresAt)
	}
	return out
}

// NewProviderStatus converts an upstream health record.
func NewProviderStatus(h *resilience.ProviderHealth) ProviderStatus {
	status := HealthStatusOK
	switch {
	case h.IsUnhealthy():
		status = HealthStatusFail
	case h.IsDegraded():
		status = HealthStatusDegraded
	}

	out := ProviderStatus{
		Provider:     h.Name,
		Status:       status,
		CircuitState: h.CircuitState.String(),
	}
	if !h.LastSuccessAt.IsZero() {
		out.LastSuccessAt = timestampPtr(h.LastSuccessAt)
	}
	if !h.LastFailureAt.IsZero() {
		out.LastFailureAt = timestampPtr(h.LastFailureAt)
	}
	if h.LastError != "" {
		msg := h.LastError
		out.Message = &msg
	}
	return out
}

func timestampPtr(t time.Time) *Timestamp {
	ts := Timestamp(t)
	return &ts
}
