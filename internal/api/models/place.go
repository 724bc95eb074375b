package models

import (
	"github.com/tashuroute/tashuroute/internal/place"
)

// Place is a place search result.
type Place struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	RoadAddress    string   `json:"roadAddress,omitempty"`
	Location       Location `json:"location"`
	NearestStation *Station `json:"nearestStation,omitempty"`
}

// NewPlace converts a domain place.
func NewPlace(p place.Place) Place {
	return Place{
		Name:        p.Name,
		Address:     p.Address,
		RoadAddress: p.RoadAddress,
		Location:    NewLocation(p.Coordinates),
	}
}

// PlaceSearchResponse is the response of GET /v1/places.
type PlaceSearchResponse struct {
	Query  string  `json:"query"`
	Places []Place `json:"places"`
}
