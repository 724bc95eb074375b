package station

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotStore persists normalized directories.
type SnapshotStore interface {
	// Save stores a snapshot.
	Save(ctx context.Context, dir *Directory) error

	// Latest returns the most recently fetched snapshot, or ErrNoSnapshot.
	Latest(ctx context.Context) (*Directory, error)
}

// InMemorySnapshotStore keeps only the latest snapshot in process memory.
type InMemorySnapshotStore struct {
	mu     sync.RWMutex
	latest *Directory
}

// NewInMemorySnapshotStore creates an empty in-memory store.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{}
}

// Save stores the snapshot if it is newer than the current one.
func (s *InMemorySnapshotStore) Save(_ context.Context, dir *Directory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil || !dir.FetchedAt().Before(s.latest.FetchedAt()) {
		s.latest = dir
	}
	return nil
}

// Latest returns the stored snapshot.
func (s *InMemorySnapshotStore) Latest(_ context.Context) (*Directory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoSnapshot
	}
	return s.latest, nil
}

// PostgresSnapshotStore stores snapshots in the station_snapshots table:
//
//	id BIGSERIAL PRIMARY KEY, provider TEXT, fetched_at TIMESTAMPTZ,
//	station_count INT, payload JSONB
//
// Only the most recent Keep rows are retained.
type PostgresSnapshotStore struct {
	pool *pgxpool.Pool
	keep int
}

// NewPostgresSnapshotStore creates a store retaining the latest keep snapshots
// (default 24).
func NewPostgresSnapshotStore(pool *pgxpool.Pool, keep int) *PostgresSnapshotStore {
	if keep <= 0 {
		keep = 24
	}
	return &PostgresSnapshotStore{pool: pool, keep: keep}
}

// Save inserts the snapshot and prunes older rows in one transaction.
func (s *PostgresSnapshotStore) Save(ctx context.Context, dir *Directory) error {
	payload, err := json.Marshal(dir.Stations())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	insert := `
		INSERT INTO station_snapshots (provider, fetched_at, station_count, payload)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, insert, dir.Provider(), dir.FetchedAt(), dir.Len(), payload); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	prune := `
		DELETE FROM station_snapshots
		WHERE id NOT IN (
			SELECT id FROM station_snapshots ORDER BY fetched_at DESC LIMIT $1
		)
	`
	if _, err := tx.Exec(ctx, prune, s.keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return tx.Commit(ctx)
}

// Latest loads the most recently fetched snapshot.
func (s *PostgresSnapshotStore) Latest(ctx context.Context) (*Directory, error) {
	query := `
		SELECT provider, fetched_at, payload
		FROM station_snapshots
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	var (
		provider  string
		fetchedAt time.Time
		payload   []byte
	)
	err := s.pool.QueryRow(ctx, query).Scan(&provider, &fetchedAt, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var stations []Station
	if err := json.Unmarshal(payload, &stations); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return NewDirectory(stations, provider, fetchedAt), nil
}

var (
	_ SnapshotStore = (*InMemorySnapshotStore)(nil)
	_ SnapshotStore = (*PostgresSnapshotStore)(nil)
)
