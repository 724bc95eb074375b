package favorite

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/station"
)

// StoreConfig holds configuration for the favorites store.
type StoreConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Now overrides the clock used for SavedAt.
	Now func() time.Time
}

// Store manages favorites collections. Every mutation loads the owner's whole
// collection, changes it and saves it back; mutations are serialized so
// concurrent requests cannot lose each other's writes.
type Store struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewStore creates a new favorites store.
func NewStore(cfg StoreConfig) *Store {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
	}
}

// Add saves a station. It returns false without changing anything when the
// station id is already saved. An empty nickname leaves it unset.
func (s *Store) Add(ctx context.Context, ownerID string, st station.Station, nick string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.load(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if indexOf(favs, st.ID) >= 0 {
		return false, nil
	}

	favs = append(favs, Favorite{
		Station:  st,
		SavedAt:  s.now().UTC(),
		Nickname: nickname(nick),
	})
	if err := s.repo.Save(ctx, ownerID, favs); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a saved station, returning false if it was not saved.
func (s *Store) Remove(ctx context.Context, ownerID, stationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.load(ctx, ownerID)
	if err != nil {
		return false, err
	}
	i := indexOf(favs, stationID)
	if i < 0 {
		return false, nil
	}

	favs = append(favs[:i], favs[i+1:]...)
	if err := s.repo.Save(ctx, ownerID, favs); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the saved stations in the order they were added.
func (s *Store) List(ctx context.Context, ownerID string) ([]Favorite, error) {
	return s.load(ctx, ownerID)
}

// Get returns one saved station.
func (s *Store) Get(ctx context.Context, ownerID, stationID string) (Favorite, bool, error) {
	favs, err := s.load(ctx, ownerID)
	if err != nil {
		return Favorite{}, false, err
	}
	i := indexOf(favs, stationID)
	if i < 0 {
		return Favorite{}, false, nil
	}
	return favs[i], true, nil
}

// IsMember reports whether a station is saved.
func (s *Store) IsMember(ctx context.Context, ownerID, stationID string) (bool, error) {
	_, ok, err := s.Get(ctx, ownerID, stationID)
	return ok, err
}

// UpdateNickname sets or, with an empty nickname, clears a saved station's
// nickname. It returns false if the station is not saved.
func (s *Store) UpdateNickname(ctx context.Context, ownerID, stationID, nick string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.load(ctx, ownerID)
	if err != nil {
		return false, err
	}
	i := indexOf(favs, stationID)
	if i < 0 {
		return false, nil
	}

	favs[i].Nickname = nickname(nick)
	if err := s.repo.Save(ctx, ownerID, favs); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes the owner's whole collection.
func (s *Store) Clear(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return ErrInvalidOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, ownerID)
}

// load reads the collection. A corrupt collection reads as empty so the next
// write replaces it.
func (s *Store) load(ctx context.Context, ownerID string) ([]Favorite, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}

	favs, err := s.repo.Load(ctx, ownerID)
	if errors.Is(err, ErrCorruptCollection) {
		s.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("discarding unreadable favorites collection")
		return []Favorite{}, nil
	}
	return favs, err
}
