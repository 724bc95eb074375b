package favorite

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// InMemoryRepository keeps encoded collections in memory, so reads and
// writes go through the same serialization as the Postgres store.
type InMemoryRepository struct {
	mu          sync.RWMutex
	collections map[string][]byte
}

// NewInMemoryRepository creates a new in-memory favorites repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{collections: make(map[string][]byte)}
}

// Load returns the owner's collection.
func (r *InMemoryRepository) Load(_ context.Context, ownerID string) ([]Favorite, error) {
	r.mu.RLock()
	payload, ok := r.collections[ownerID]
	r.mu.RUnlock()

	if !ok {
		return []Favorite{}, nil
	}
	return decodeCollection(payload)
}

// Save replaces the owner's collection.
func (r *InMemoryRepository) Save(_ context.Context, ownerID string, favs []Favorite) error {
	payload, err := json.Marshal(favs)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[ownerID] = payload
	return nil
}

// Delete removes the owner's collection.
func (r *InMemoryRepository) Delete(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections, ownerID)
	return nil
}

// Put stores a raw payload for an owner.
func (r *InMemoryRepository) Put(ownerID string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[ownerID] = payload
}

func decodeCollection(payload []byte) ([]Favorite, error) {
	favs := []Favorite{}
	if err := json.Unmarshal(payload, &favs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptCollection, err)
	}
	return favs, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
