package favorite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores each collection as one JSONB row in
// favorite_collections.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL favorites repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load returns the owner's collection.
func (r *PostgresRepository) Load(ctx context.Context, ownerID string) ([]Favorite, error) {
	query := `
		SELECT payload
		FROM favorite_collections
		WHERE owner_id = $1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []Favorite{}, nil
		}
		return nil, err
	}

	return decodeCollection(payload)
}

// Save replaces the owner's collection.
func (r *PostgresRepository) Save(ctx context.Context, ownerID string, favs []Favorite) error {
	payload, err := json.Marshal(favs)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}

	query := `
		INSERT INTO favorite_collections (owner_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query, ownerID, payload)
	return err
}

// Delete removes the owner's collection.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM favorite_collections WHERE owner_id = $1`, ownerID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
