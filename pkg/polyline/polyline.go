// Package polyline encodes coordinate sequences with the Google encoded
// polyline algorithm at five decimal places, the format Kakao and Naver map
// SDKs accept for overlay paths.
package polyline

import (
	"errors"
	"math"

	"github.com/golang/geo/s2"
)

const (
	scale         = 1e5
	earthRadiusKm = 6371.0
)

// ErrTruncated is returned when an encoded string ends inside a value or
// holds an odd number of values.
var ErrTruncated = errors.New("polyline: truncated input")

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Encode encodes points into a polyline string.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*8)
	var prevLat, prevLon int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * scale))
		lon := int64(math.Round(p.Lon * scale))
		buf = appendValue(buf, lat-prevLat)
		buf = appendValue(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return string(buf)
}

// Decode decodes a polyline string. An empty string decodes to nil.
func Decode(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, nil
	}

	var (
		points   []Point
		lat, lon int64
		i        int
	)
	for i < len(encoded) {
		dLat, next, err := readValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dLon, next, err := readValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next

		lat += dLat
		lon += dLon
		points = append(points, Point{Lat: float64(lat) / scale, Lon: float64(lon) / scale})
	}
	return points, nil
}

// Length returns the great-circle length of the path in kilometers.
func Length(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		a := s2.LatLngFromDegrees(points[i-1].Lat, points[i-1].Lon)
		b := s2.LatLngFromDegrees(points[i].Lat, points[i].Lon)
		total += a.Distance(b).Radians() * earthRadiusKm
	}
	return total
}

func appendValue(buf []byte, v int64) []byte {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		buf = append(buf, byte(0x20|(u&0x1f))+63)
		u >>= 5
	}
	return append(buf, byte(u)+63)
}

func readValue(s string, i int) (int64, int, error) {
	var (
		result uint64
		shift  uint
	)
	for {
		if i >= len(s) {
			return 0, i, ErrTruncated
		}
		b := uint64(s[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^int64(result >> 1), i, nil
	}
	return int64(result >> 1), i, nil
}
