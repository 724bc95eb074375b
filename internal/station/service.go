package station

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// Provider fetches the raw station feed from an upstream source.
type Provider interface {
	// Name identifies the provider in logs and snapshots.
	Name() string

	// FetchFeed fetches and decodes one feed document. Errors wrap
	// ErrProviderUnavailable or ErrMalformedFeed.
	FetchFeed(ctx context.Context) (*Feed, error)
}

// RefreshHook observes every successfully built snapshot.
type RefreshHook func(dir *Directory, result NormalizeResult)

// ServiceConfig holds configuration for the station service.
type ServiceConfig struct {
	// Provider is the upstream feed.
	Provider Provider

	// Store persists snapshots so a cold process can serve data while the
	// upstream is down. Optional.
	Store SnapshotStore

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a snapshot is served before refetching (default: 60s).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration

	// OnRefresh is called after each successful refresh. Optional.
	OnRefresh RefreshHook
}

// Service provides the current station directory with caching.
type Service struct {
	provider        Provider
	store           SnapshotStore
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	onRefresh       RefreshHook

	mu          sync.RWMutex
	dir         *Directory
	cacheExpiry time.Time
}

// NewService creates a new station service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 60 * time.Second
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		store:           cfg.Store,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		onRefresh:       cfg.OnRefresh,
	}
}

// Directory returns the current snapshot, refetching it once the cache expires.
func (s *Service) Directory(ctx context.Context) (*Directory, error) {
	s.mu.RLock()
	if s.dir != nil && time.Now().Before(s.cacheExpiry) {
		dir := s.dir
		s.mu.RUnlock()
		return dir, nil
	}
	s.mu.RUnlock()

	return s.refresh(ctx, false)
}

// Refresh forces a fetch from the provider regardless of cache state.
func (s *Service) Refresh(ctx context.Context) (*Directory, error) {
	return s.refresh(ctx, true)
}

// Nearest returns the station closest to p in the current snapshot.
func (s *Service) Nearest(ctx context.Context, p geo.Coordinates) (WithDistance, bool, error) {
	dir, err := s.Directory(ctx)
	if err != nil {
		return WithDistance{}, false, err
	}
	nearest, ok := dir.Nearest(p)
	return nearest, ok, nil
}

// NearestAvailable returns the closest station with bikes in the current snapshot.
func (s *Service) NearestAvailable(ctx context.Context, p geo.Coordinates) (WithDistance, bool, error) {
	dir, err := s.Directory(ctx)
	if err != nil {
		return WithDistance{}, false, err
	}
	nearest, ok := dir.NearestAvailable(p)
	return nearest, ok, nil
}

// Station looks up a station by id.
func (s *Service) Station(ctx context.Context, id string) (Station, error) {
	dir, err := s.Directory(ctx)
	if err != nil {
		return Station{}, err
	}
	st, ok := dir.Get(id)
	if !ok {
		return Station{}, ErrStationNotFound
	}
	return st, nil
}

// InvalidateCache drops the cached snapshot.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = nil
	s.cacheExpiry = time.Time{}
}

// CacheStatus represents the current state of the cache.
type CacheStatus struct {
	HasData      bool
	FetchedAt    time.Time
	ExpiresAt    time.Time
	IsExpired    bool
	IsStale      bool
	StationCount int
	Provider     string
}

// CacheStatus returns information about the current cache state.
func (s *Service) CacheStatus() CacheStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dir == nil {
		return CacheStatus{}
	}

	now := time.Now()
	return CacheStatus{
		HasData:      true,
		FetchedAt:    s.dir.FetchedAt(),
		ExpiresAt:    s.cacheExpiry,
		IsExpired:    now.After(s.cacheExpiry),
		IsStale:      now.After(s.dir.FetchedAt().Add(s.staleIfErrorTTL)),
		StationCount: s.dir.Len(),
		Provider:     s.dir.Provider(),
	}
}

func (s *Service) refresh(ctx context.Context, force bool) (*Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if !force && s.dir != nil && time.Now().Before(s.cacheExpiry) {
		return s.dir, nil
	}

	s.logger.Debug().Str("provider", s.provider.Name()).Msg("refreshing station directory")

	feed, err := s.provider.FetchFeed(ctx)
	if err != nil {
		return s.fallback(ctx, err)
	}

	dir, result := BuildDirectory(feed)
	for _, rej := range result.Rejected {
		s.logger.Debug().
			Int("index", rej.Index).
			Str("station_id", rej.ID).
			Str("field", rej.Field).
			Str("reason", rej.Reason).
			Msg("dropped invalid station record")
	}

	s.dir = dir
	s.cacheExpiry = time.Now().Add(s.cacheTTL)

	s.logger.Info().
		Str("provider", dir.Provider()).
		Int("stations", dir.Len()).
		Int("rejected", len(result.Rejected)).
		Msg("station directory refreshed")

	if s.store != nil {
		if err := s.store.Save(ctx, dir); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist station snapshot")
		}
	}
	if s.onRefresh != nil {
		s.onRefresh(dir, result)
	}

	return dir, nil
}

// holdStale keeps serving s.dir for a quarter of the cache TTL before the
// provider is tried again, never past the stale-if-error window. Must hold s.mu.
func (s *Service) holdStale() {
	expiry := time.Now().Add(s.cacheTTL / 4)
	if limit := s.dir.FetchedAt().Add(s.staleIfErrorTTL); limit.Before(expiry) {
		expiry = limit
	}
	s.cacheExpiry = expiry
}

// fallback serves stale data after a provider failure. Must hold s.mu.
func (s *Service) fallback(ctx context.Context, cause error) (*Directory, error) {
	s.logger.Error().Err(cause).Msg("failed to fetch station feed")

	if s.dir != nil && time.Now().Before(s.dir.FetchedAt().Add(s.staleIfErrorTTL)) {
		s.logger.Warn().
			Time("fetched_at", s.dir.FetchedAt()).
			Msg("serving stale station data due to provider error")
		s.holdStale()
		return s.dir, nil
	}

	if s.store != nil {
		dir, err := s.store.Latest(ctx)
		switch {
		case err == nil && time.Now().Before(dir.FetchedAt().Add(s.staleIfErrorTTL)):
			s.logger.Warn().
				Time("fetched_at", dir.FetchedAt()).
				Msg("serving stored station snapshot due to provider error")
			s.dir = dir
			s.holdStale()
			return dir, nil
		case err != nil && !errors.Is(err, ErrNoSnapshot):
			s.logger.Warn().Err(err).Msg("failed to load stored station snapshot")
		}
	}

	if errors.Is(cause, ErrMalformedFeed) || errors.Is(cause, ErrProviderUnavailable) {
		return nil, cause
	}
	return nil, &Error{
		Provider: s.provider.Name(),
		Message:  "station feed unavailable",
		Err:      fmt.Errorf("%w: %w", ErrProviderUnavailable, cause),
	}
}
