package station

import (
	"time"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// Directory is an immutable snapshot of normalized stations. A refresh builds a
// new Directory; existing values are never mutated.
type Directory struct {
	stations  []Station
	byID      map[string]int
	bounds    geo.Bounds
	provider  string
	fetchedAt time.Time
	rejected  int
}

// NewDirectory builds a snapshot from already-normalized stations. The slice is
// copied. Duplicate ids resolve to the first occurrence.
func NewDirectory(stations []Station, provider string, fetchedAt time.Time) *Directory {
	own := make([]Station, len(stations))
	copy(own, stations)

	byID := make(map[string]int, len(own))
	points := make([]geo.Coordinates, 0, len(own))
	for i, s := range own {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = i
		}
		points = append(points, s.Position())
	}

	return &Directory{
		stations:  own,
		byID:      byID,
		bounds:    geo.BoundsOf(points),
		provider:  provider,
		fetchedAt: fetchedAt,
	}
}

// BuildDirectory normalizes a feed into a snapshot.
func BuildDirectory(feed *Feed) (*Directory, NormalizeResult) {
	result := Normalize(feed.Records)
	dir := NewDirectory(result.Stations, feed.Provider, feed.FetchedAt)
	dir.rejected = len(result.Rejected)
	return dir, result
}

// Stations returns a copy of the stations in feed order.
func (d *Directory) Stations() []Station {
	out := make([]Station, len(d.stations))
	copy(out, d.stations)
	return out
}

// Len returns the number of stations.
func (d *Directory) Len() int {
	return len(d.stations)
}

// Get looks up a station by id.
func (d *Directory) Get(id string) (Station, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Station{}, false
	}
	return d.stations[i], true
}

// Nearest returns the station closest to p.
func (d *Directory) Nearest(p geo.Coordinates) (WithDistance, bool) {
	return FindNearest(p, d.stations)
}

// NearestAvailable returns the closest station with bikes.
func (d *Directory) NearestAvailable(p geo.Coordinates) (WithDistance, bool) {
	return FindNearestAvailable(p, d.stations)
}

// Bounds returns the area covered by the stations.
func (d *Directory) Bounds() geo.Bounds {
	return d.bounds
}

// AvailableCount returns how many stations have bikes and the total bike count.
func (d *Directory) AvailableCount() (stations, bikes int) {
	for _, s := range d.stations {
		if s.HasBikes() {
			stations++
			bikes += s.ParkingCount
		}
	}
	return stations, bikes
}

// Provider names the feed the snapshot came from.
func (d *Directory) Provider() string {
	return d.provider
}

// FetchedAt is when the underlying feed was fetched.
func (d *Directory) FetchedAt() time.Time {
	return d.fetchedAt
}

// Rejected is the number of feed records dropped during normalization.
func (d *Directory) Rejected() int {
	return d.rejected
}
