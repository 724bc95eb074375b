package favorite

import "context"

// Repository persists one favorites collection per owner.
type Repository interface {
	// Load returns the owner's collection in saved order; an owner with no
	// collection yields an empty slice.
	Load(ctx context.Context, ownerID string) ([]Favorite, error)

	// Save replaces the owner's whole collection.
	Save(ctx context.Context, ownerID string, favs []Favorite) error

	// Delete removes the owner's collection.
	Delete(ctx context.Context, ownerID string) error
}
