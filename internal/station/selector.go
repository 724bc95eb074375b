package station

import "github.com/tashuroute/tashuroute/internal/geo"

// FindNearest returns the station closest to p. Every station is inspected;
// of equidistant stations the first in input order wins. The boolean is false
// only when stations is empty.
func FindNearest(p geo.Coordinates, stations []Station) (WithDistance, bool) {
	return nearest(p, stations, func(Station) bool { return true })
}

// FindNearestAvailable is FindNearest restricted to stations with at least one
// bike. The boolean is false when no station has bikes.
func FindNearestAvailable(p geo.Coordinates, stations []Station) (WithDistance, bool) {
	return nearest(p, stations, Station.HasBikes)
}

func nearest(p geo.Coordinates, stations []Station, eligible func(Station) bool) (WithDistance, bool) {
	var (
		best  WithDistance
		found bool
	)
	for _, s := range stations {
		if !eligible(s) {
			continue
		}
		d := geo.Distance(p, s.Position())
		// Strict comparison keeps the earliest of equidistant stations.
		if !found || d < best.Distance {
			best = WithDistance{Station: s, Distance: d}
			found = true
		}
	}
	return best, found
}
