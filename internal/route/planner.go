package route

import (
	"fmt"
	"math"

	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/station"
	"github.com/tashuroute/tashuroute/pkg/polyline"
)

// Plan builds a walk-bike-walk route from start to destination.
//
// The pickup station is the nearest one with bikes; the drop-off station is
// the nearest one regardless of availability. Plan returns (nil, nil) when no
// pickup or drop-off station exists. Non-finite coordinates return
// geo.ErrInvalidCoordinates.
func Plan(start, destination geo.Coordinates, stations []station.Station) (*Route, error) {
	if !start.IsFinite() {
		return nil, fmt.Errorf("start %v: %w", start, geo.ErrInvalidCoordinates)
	}
	if !destination.IsFinite() {
		return nil, fmt.Errorf("destination %v: %w", destination, geo.ErrInvalidCoordinates)
	}

	pickup, ok := station.FindNearestAvailable(start, stations)
	if !ok {
		return nil, nil
	}
	dropoff, ok := station.FindNearest(destination, stations)
	if !ok {
		return nil, nil
	}

	from := Endpoint{Kind: EndpointStart, Name: StartName, Coordinates: start}
	to := Endpoint{Kind: EndpointDestination, Name: DestinationName, Coordinates: destination}
	pickupEnd := stationEndpoint(pickup.Station)
	dropoffEnd := stationEndpoint(dropoff.Station)

	segments := []Segment{
		newSegment(ModeWalk, from, pickupEnd),
		newSegment(ModeBike, pickupEnd, dropoffEnd),
		newSegment(ModeWalk, dropoffEnd, to),
	}

	r := &Route{Segments: segments}
	for _, seg := range segments {
		r.TotalDistanceKm += seg.DistanceKm
		r.TotalDurationMin += seg.DurationMin
	}
	r.StartStation = station.WithDistance{Station: pickup.Station, Distance: segments[0].DistanceKm}
	r.EndStation = station.WithDistance{Station: dropoff.Station, Distance: segments[2].DistanceKm}
	return r, nil
}

// Minutes converts a distance at a speed to whole minutes, rounded half away
// from zero.
func Minutes(distanceKm, speedKmh float64) int {
	return int(math.Round(distanceKm / speedKmh * 60))
}

func newSegment(mode Mode, from, to Endpoint) Segment {
	speed := WalkSpeedKmh
	if mode == ModeBike {
		speed = BikeSpeedKmh
	}
	d := geo.Distance(from.Coordinates, to.Coordinates)
	return Segment{
		Mode:        mode,
		From:        from,
		To:          to,
		DistanceKm:  d,
		DurationMin: Minutes(d, speed),
		Polyline: polyline.Encode([]polyline.Point{
			{Lat: from.Coordinates.Lat, Lon: from.Coordinates.Lon},
			{Lat: to.Coordinates.Lat, Lon: to.Coordinates.Lon},
		}),
	}
}

func stationEndpoint(s station.Station) Endpoint {
	return Endpoint{
		Kind:        EndpointStation,
		Name:        s.Name,
		Coordinates: s.Position(),
		Station:     &s,
	}
}

// Summary renders a one-line description of the route.
func Summary(r *Route) string {
	return fmt.Sprintf("about %d min (total %.2f km, bike %.2f km)",
		r.TotalDurationMin, r.TotalDistanceKm, r.BikeDistanceKm())
}
