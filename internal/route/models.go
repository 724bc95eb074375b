// Package route composes walk-bike-walk trips between two arbitrary points
// using the nearest bike-share stations.
package route

import (
	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/station"
)

// Travel speeds in km/h.
const (
	WalkSpeedKmh = 4.0
	BikeSpeedKmh = 15.0
)

// Default endpoint labels.
const (
	StartName       = "출발지"
	DestinationName = "목적지"
)

// Mode is how a segment is travelled.
type Mode string

const (
	ModeWalk Mode = "walk"
	ModeBike Mode = "bike"
)

// EndpointKind tells what an endpoint refers to.
type EndpointKind string

const (
	EndpointStart       EndpointKind = "start"
	EndpointDestination EndpointKind = "destination"
	EndpointStation     EndpointKind = "station"
)

// Endpoint is one end of a segment: the trip start, the trip destination or
// a station. Station is set only for EndpointStation.
type Endpoint struct {
	Kind        EndpointKind
	Name        string
	Coordinates geo.Coordinates
	Station     *station.Station
}

// Segment is one leg of a route.
type Segment struct {
	Mode        Mode
	From        Endpoint
	To          Endpoint
	DistanceKm  float64
	DurationMin int
	// Polyline is the encoded straight line between From and To.
	Polyline string
}

// Route is a three-leg trip: walk to a pickup station, ride to a drop-off
// station, walk to the destination.
type Route struct {
	Segments         []Segment
	TotalDistanceKm  float64
	TotalDurationMin int

	// StartStation carries the walk distance from the start.
	StartStation station.WithDistance
	// EndStation carries the walk distance to the destination.
	EndStation station.WithDistance
}

// BikeDistanceKm returns the length of the bike leg.
func (r *Route) BikeDistanceKm() float64 {
	for _, seg := range r.Segments {
		if seg.Mode == ModeBike {
			return seg.DistanceKm
		}
	}
	return 0
}

// WithNames replaces the start and destination labels. Empty names keep the
// defaults.
func (r *Route) WithNames(start, destination string) *Route {
	if len(r.Segments) == 0 {
		return r
	}
	if start != "" {
		r.Segments[0].From.Name = start
	}
	if destination != "" {
		r.Segments[len(r.Segments)-1].To.Name = destination
	}
	return r
}
