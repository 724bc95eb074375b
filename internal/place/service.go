package place

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/station"
)

// StationLocator finds the station nearest to a point.
type StationLocator interface {
	Nearest(ctx context.Context, p geo.Coordinates) (station.WithDistance, bool, error)
}

// ServiceConfig holds configuration for the place service.
type ServiceConfig struct {
	Provider Provider

	// Stations resolves a chosen place to its nearest station. Optional.
	Stations StationLocator

	Logger zerolog.Logger

	// CacheTTL is how long results are cached per query (default: 5 minutes).
	CacheTTL time.Duration

	// CacheSize bounds the number of cached queries (default: 1000).
	CacheSize int
}

// Service searches places with an LRU result cache.
type Service struct {
	provider Provider
	stations StationLocator
	logger   zerolog.Logger
	cache    gcache.Cache
}

// NewService creates a new place service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	size := cfg.CacheSize
	if size == 0 {
		size = 1000
	}

	return &Service{
		provider: cfg.Provider,
		stations: cfg.Stations,
		logger:   cfg.Logger,
		cache:    gcache.New(size).LRU().Expiration(ttl).Build(),
	}
}

// NormalizeQuery trims and collapses whitespace and lowercases the query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Search returns places matching query. A blank query returns an empty
// result without contacting the provider.
func (s *Service) Search(ctx context.Context, query string) ([]Place, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return []Place{}, nil
	}

	if cached, err := s.cache.Get(key); err == nil {
		if places, ok := cached.([]Place); ok {
			s.logger.Debug().Str("query", key).Msg("cache hit for place search")
			return places, nil
		}
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		s.logger.Warn().Err(err).Msg("place cache lookup failed")
	}

	places, err := s.provider.Search(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("provider", s.provider.Name()).Msg("place search failed")
		return nil, err
	}
	if places == nil {
		places = []Place{}
	}

	if err := s.cache.Set(key, places); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache place results")
	}
	return places, nil
}

// NearestStation returns the station closest to p regardless of availability,
// the drop-off choice when p is used as a destination.
func (s *Service) NearestStation(ctx context.Context, p Place) (station.WithDistance, bool, error) {
	if s.stations == nil {
		return station.WithDistance{}, false, nil
	}
	return s.stations.Nearest(ctx, p.Coordinates)
}

// CachedQueries returns the number of cached queries.
func (s *Service) CachedQueries() int {
	return s.cache.Len(true)
}
