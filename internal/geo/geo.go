// Package geo provides coordinate types and great-circle distance helpers.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance calculations.
const EarthRadiusKm = 6371.0

var (
	// ErrInvalidCoordinates indicates a coordinate is non-finite or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrLocationUnavailable indicates the caller could not supply its position
	// (geolocation denied or unsupported on the client).
	ErrLocationUnavailable = errors.New("location unavailable")
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LatLng converts the coordinates to an s2 point.
func (c Coordinates) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// IsFinite reports whether both components are finite numbers.
func (c Coordinates) IsFinite() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0)
}

// Validate checks that the coordinates are finite and within WGS84 ranges.
func (c Coordinates) Validate() error {
	if !c.IsFinite() {
		return fmt.Errorf("%w: non-finite value", ErrInvalidCoordinates)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinates, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinates, c.Lon)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}

// Distance returns the haversine great-circle distance between a and b in
// kilometers. NaN inputs propagate to the result.
func Distance(a, b Coordinates) float64 {
	return a.LatLng().Distance(b.LatLng()).Radians() * EarthRadiusKm
}
