package models

import (
	"github.com/tashuroute/tashuroute/internal/route"
)

// RoutePoint is a trip endpoint with an optional display name.
type RoutePoint struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Name string   `json:"name,omitempty"`
}

// Location returns the point's coordinates. Call Validate first.
func (p RoutePoint) Location() Location {
	return Location{Lat: *p.Lat, Lon: *p.Lon}
}

// RoutePlanRequest is the request body of POST /v1/routes:plan.
type RoutePlanRequest struct {
	Origin      *RoutePoint `json:"origin"`
	Destination *RoutePoint `json:"destination"`
}

// Validate returns field errors for missing or out-of-range points.
func (r RoutePlanRequest) Validate() []FieldError {
	var errs []FieldError
	errs = append(errs, validatePoint("origin", r.Origin)...)
	errs = append(errs, validatePoint("destination", r.Destination)...)
	return errs
}

func validatePoint(field string, p *RoutePoint) []FieldError {
	if p == nil {
		return []FieldError{{Field: field, Message: "is required", Code: "REQUIRED"}}
	}

	var errs []FieldError
	switch {
	case p.Lat == nil:
		errs = append(errs, FieldError{Field: field + ".lat", Message: "is required", Code: "REQUIRED"})
	case *p.Lat < -90 || *p.Lat > 90:
		errs = append(errs, FieldError{Field: field + ".lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"})
	}
	switch {
	case p.Lon == nil:
		errs = append(errs, FieldError{Field: field + ".lon", Message: "is required", Code: "REQUIRED"})
	case *p.Lon < -180 || *p.Lon > 180:
		errs = append(errs, FieldError{Field: field + ".lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE"})
	}
	return errs
}

// RouteEndpoint is one end of a segment.
type RouteEndpoint struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Location  Location `json:"location"`
	StationID string   `json:"stationId,omitempty"`
}

// RouteSegment is one leg of a plan.
type RouteSegment struct {
	Mode        string        `json:"mode"`
	From        RouteEndpoint `json:"from"`
	To          RouteEndpoint `json:"to"`
	DistanceKm  float64       `json:"distanceKm"`
	DurationMin int           `json:"durationMin"`
	Polyline    string        `json:"polyline"`
}

// RoutePlan is the response of POST /v1/routes:plan.
type RoutePlan struct {
	Segments         []RouteSegment `json:"segments"`
	TotalDistanceKm  float64        `json:"totalDistanceKm"`
	TotalDurationMin int            `json:"totalDurationMin"`
	BikeDistanceKm   float64        `json:"bikeDistanceKm"`
	StartStation     Station        `json:"startStation"`
	EndStation       Station        `json:"endStation"`
	Summary          string         `json:"summary"`

	// Links give cycling directions between the two stations.
	Links MapLinks `json:"links"`
}

// NewRoutePlan converts a planned route.
func NewRoutePlan(r *route.Route) RoutePlan {
	segments := make([]RouteSegment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = RouteSegment{
			Mode:        string(seg.Mode),
			From:        newRouteEndpoint(seg.From),
			To:          newRouteEndpoint(seg.To),
			DistanceKm:  roundKm(seg.DistanceKm),
			DurationMin: seg.DurationMin,
			Polyline:    seg.Polyline,
		}
	}

	start, end := r.StartStation, r.EndStation
	return RoutePlan{
		Segments:         segments,
		TotalDistanceKm:  roundKm(r.TotalDistanceKm),
		TotalDurationMin: r.TotalDurationMin,
		BikeDistanceKm:   roundKm(r.BikeDistanceKm()),
		StartStation:     NewStationWithDistance(start),
		EndStation:       NewStationWithDistance(end),
		Summary:          route.Summary(r),
		Links:            DirectionLinks(start.Name, start.Position(), end.Name, end.Position()),
	}
}

func newRouteEndpoint(e route.Endpoint) RouteEndpoint {
	out := RouteEndpoint{
		Type:     string(e.Kind),
		Name:     e.Name,
		Location: NewLocation(e.Coordinates),
	}
	if e.Station != nil {
		out.StationID = e.Station.ID
	}
	return out
}
