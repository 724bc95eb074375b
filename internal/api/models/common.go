// Package models provides request and response models for the station API.
package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// Location is a coordinate on the wire.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinates converts the location to the domain type.
func (l Location) Coordinates() geo.Coordinates {
	return geo.Coordinates{Lat: l.Lat, Lon: l.Lon}
}

// NewLocation converts domain coordinates to the wire type.
func NewLocation(c geo.Coordinates) Location {
	return Location{Lat: c.Lat, Lon: c.Lon}
}

// HealthStatus is the overall or per-upstream status in ops responses.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp encodes as RFC 3339 with second precision in UTC.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the wrapped time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// roundKm rounds a distance to metre precision for display.
func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}
