package models

import (
	"github.com/tashuroute/tashuroute/internal/station"
)

// Station is a station on the wire.
type Station struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Location     Location `json:"location"`
	ParkingCount int      `json:"parkingCount"`
	Available    bool     `json:"available"`
	DistanceKm   *float64 `json:"distanceKm,omitempty"`
	Links        MapLinks `json:"links"`
}

// NewStation converts a domain station.
func NewStation(s station.Station) Station {
	return Station{
		ID:           s.ID,
		Name:         s.Name,
		Address:      s.Address,
		Location:     NewLocation(s.Position()),
		ParkingCount: s.ParkingCount,
		Available:    s.HasBikes(),
		Links:        StationLinks(s.Name, s.Position()),
	}
}

// NewStationWithDistance converts a station annotated with its distance.
func NewStationWithDistance(s station.WithDistance) Station {
	out := NewStation(s.Station)
	d := roundKm(s.Distance)
	out.DistanceKm = &d
	return out
}

// Bounds is the bounding box of a snapshot.
type Bounds struct {
	SouthWest Location `json:"southWest"`
	NorthEast Location `json:"northEast"`
}

// StationListMeta describes the snapshot behind a station list.
type StationListMeta struct {
	Count          int        `json:"count"`
	AvailableCount int        `json:"availableCount"`
	BikeCount      int        `json:"bikeCount"`
	Bounds         *Bounds    `json:"bounds,omitempty"`
	Provider       string     `json:"provider"`
	FetchedAt      *Timestamp `json:"fetchedAt,omitempty"`
}

// StationList is the response of GET /v1/stations.
type StationList struct {
	Stations []Station       `json:"stations"`
	Meta     StationListMeta `json:"meta"`
}

// NewStationList converts a directory.
func NewStationList(dir *station.Directory) StationList {
	all := dir.Stations()
	stations := make([]Station, len(all))
	for i, s := range all {
		stations[i] = NewStation(s)
	}

	withBikes, bikes := dir.AvailableCount()
	meta := StationListMeta{
		Count:          len(stations),
		AvailableCount: withBikes,
		BikeCount:      bikes,
		Provider:       dir.Provider(),
	}
	if !dir.FetchedAt().IsZero() {
		meta.FetchedAt = timestampPtr(dir.FetchedAt())
	}
	if b := dir.Bounds(); !b.IsEmpty() {
		meta.Bounds = &Bounds{
			SouthWest: NewLocation(b.SouthWest()),
			NorthEast: NewLocation(b.NorthEast()),
		}
	}

	return StationList{Stations: stations, Meta: meta}
}

// NearestStationResponse is the response of GET /v1/stations:nearest.
type NearestStationResponse struct {
	Origin       Location `json:"origin"`
	RequireBikes bool     `json:"requireBikes"`
	Station      Station  `json:"station"`
	WalkMinutes  int      `json:"walkMinutes"`
}
