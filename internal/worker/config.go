// Package worker provides background job processing for the station service.
package worker

import (
	"time"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// CoverageTarget is an area whose bike availability is tracked after every
// refresh.
type CoverageTarget struct {
	// Name labels the target in metrics and logs.
	Name string

	// Points are sampled locations inside the area, typically transit hubs
	// or campuses.
	Points []geo.Coordinates

	// Priority determines processing order (lower = higher priority).
	Priority int
}

// RefreshConfig holds configuration for the station refresh job.
type RefreshConfig struct {
	// Targets are the areas checked after each refresh.
	// If empty, uses DefaultCoverageTargets.
	Targets []CoverageTarget

	// Concurrency is the number of coverage workers.
	// Default: 3
	Concurrency int

	// Timeout bounds the upstream fetch.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxWalkKm is the distance under which a point counts as covered.
	// Default: 1 km
	MaxWalkKm float64
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:     DefaultCoverageTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
		MaxWalkKm:   1,
	}
}

// DefaultCoverageTargets returns the Daejeon areas tracked by default.
func DefaultCoverageTargets() []CoverageTarget {
	return []CoverageTarget{
		{
			Name:     "daejeon-station",
			Priority: 1,
			Points: []geo.Coordinates{
				{Lat: 36.3315, Lon: 127.4342}, // Daejeon Station
				{Lat: 36.3278, Lon: 127.4270}, // Jungang-ro
			},
		},
		{
			Name:     "city-hall",
			Priority: 1,
			Points: []geo.Coordinates{
				{Lat: 36.3504, Lon: 127.3845}, // City Hall
				{Lat: 36.3518, Lon: 127.3786}, // Government Complex
			},
		},
		{
			Name:     "dunsan",
			Priority: 2,
			Points: []geo.Coordinates{
				{Lat: 36.3520, Lon: 127.3780}, // Dunsan-dong
				{Lat: 36.3446, Lon: 127.3948}, // Wolpyeong
			},
		},
		{
			Name:     "yuseong-campus",
			Priority: 2,
			Points: []geo.Coordinates{
				{Lat: 36.3721, Lon: 127.3604}, // KAIST
				{Lat: 36.3669, Lon: 127.3443}, // Chungnam National University
			},
		},
		{
			Name:     "expo",
			Priority: 3,
			Points: []geo.Coordinates{
				{Lat: 36.3766, Lon: 127.3875}, // Expo Park
				{Lat: 36.3757, Lon: 127.3759}, // National Science Museum
			},
		},
		{
			Name:     "jung-gu",
			Priority: 3,
			Points: []geo.Coordinates{
				{Lat: 36.3251, Lon: 127.4212}, // Eunhaeng-dong
				{Lat: 36.3080, Lon: 127.4126}, // Citizens' Park
			},
		},
	}
}

// TotalPoints returns the total number of sampled points.
func (c RefreshConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if len(c.Targets) == 0 {
		c.Targets = def.Targets
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxWalkKm <= 0 {
		c.MaxWalkKm = def.MaxWalkKm
	}
	return c
}
