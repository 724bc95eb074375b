package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// locationFromQuery reads the caller's position from the lat and lon query
// parameters. Absent parameters mean the client could not obtain a fix.
func locationFromQuery(r *http.Request) (geo.Coordinates, error) {
	q := r.URL.Query()
	latText, lonText := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latText == "" || lonText == "" {
		return geo.Coordinates{}, geo.ErrLocationUnavailable
	}

	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: lat %q is not a number", geo.ErrInvalidCoordinates, latText)
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("%w: lon %q is not a number", geo.ErrInvalidCoordinates, lonText)
	}

	p := geo.Coordinates{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return geo.Coordinates{}, err
	}
	return p, nil
}
