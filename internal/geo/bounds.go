package geo

import "github.com/golang/geo/s2"

// Bounds is the smallest latitude/longitude rectangle covering a set of points.
type Bounds struct {
	rect s2.Rect
}

// BoundsOf returns the bounding rectangle of the given points. Non-finite
// points are skipped.
func BoundsOf(points []Coordinates) Bounds {
	rect := s2.EmptyRect()
	for _, p := range points {
		if !p.IsFinite() {
			continue
		}
		rect = rect.AddPoint(p.LatLng())
	}
	return Bounds{rect: rect}
}

// IsEmpty reports whether the bounds cover no points.
func (b Bounds) IsEmpty() bool {
	return b.rect.IsEmpty()
}

// SouthWest returns the minimum corner.
func (b Bounds) SouthWest() Coordinates {
	lo := b.rect.Lo()
	return Coordinates{Lat: lo.Lat.Degrees(), Lon: lo.Lng.Degrees()}
}

// NorthEast returns the maximum corner.
func (b Bounds) NorthEast() Coordinates {
	hi := b.rect.Hi()
	return Coordinates{Lat: hi.Lat.Degrees(), Lon: hi.Lng.Degrees()}
}

// Contains reports whether p lies within the bounds.
func (b Bounds) Contains(p Coordinates) bool {
	return b.rect.ContainsLatLng(p.LatLng())
}
