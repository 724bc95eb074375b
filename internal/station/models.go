// Package station provides the bike-share station directory: feed
// normalization, immutable snapshots, nearest-station selection and a cached
// service over an upstream feed provider.
package station

import (
	"errors"
	"time"

	"github.com/tashuroute/tashuroute/internal/geo"
)

var (
	// ErrMalformedFeed indicates the feed lacks a top-level station array.
	ErrMalformedFeed = errors.New("malformed station feed")

	// ErrProviderUnavailable indicates the station feed could not be fetched.
	ErrProviderUnavailable = errors.New("station provider unavailable")

	// ErrStationNotFound indicates no station exists with the requested id.
	ErrStationNotFound = errors.New("station not found")

	// ErrNoSnapshot indicates no station snapshot has been stored yet.
	ErrNoSnapshot = errors.New("no station snapshot")
)

// Station is a bike-share dock. Lat and Lon use the feed's x_pos/y_pos names on
// the wire so a marshalled directory is itself a valid feed.
type Station struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Lat          float64 `json:"x_pos"`
	Lon          float64 `json:"y_pos"`
	ParkingCount int     `json:"parking_count"`
}

// Position returns the station coordinates.
func (s Station) Position() geo.Coordinates {
	return geo.Coordinates{Lat: s.Lat, Lon: s.Lon}
}

// HasBikes reports whether at least one bike can be rented.
func (s Station) HasBikes() bool {
	return s.ParkingCount > 0
}

// WithDistance is a Station annotated with its distance in kilometers from a
// query's reference point. Values are derived per query and never shared.
type WithDistance struct {
	Station
	Distance float64 `json:"distance"`
}

// Error provides detailed error information from a station provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable)
}

// Feed is the decoded result of one upstream fetch.
type Feed struct {
	Records   []RawRecord
	Provider  string
	FetchedAt time.Time
}
