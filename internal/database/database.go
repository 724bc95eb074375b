// Package database provides PostgreSQL connection management and the schema
// for station snapshots and favorites.
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Config describes the Postgres pool. URL, when set, wins over the
// individual connection fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration

	// ConnectTimeout bounds how long Connect keeps retrying the first ping,
	// covering a database or proxy sidecar that starts after the service.
	ConnectTimeout time.Duration
}

// DefaultConfig points at the docker-compose database used in development.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "tashuroute",
		Password:        "localdev",
		Database:        "tashuroute",
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectTimeout:  30 * time.Second,
	}
}

// ConnectionString returns the DSN, escaping credentials.
func (c Config) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Connect opens a pool and waits until the database answers a ping, backing
// off exponentially for at most ConnectTimeout.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = cfg.ConnectTimeout

	ping := func() error { return pool.Ping(ctx) }
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Str("host", poolConfig.ConnConfig.Host).Msg("database not ready")
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(bo, ctx), notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS station_snapshots (
		id            BIGSERIAL PRIMARY KEY,
		provider      TEXT        NOT NULL,
		fetched_at    TIMESTAMPTZ NOT NULL,
		station_count INT         NOT NULL,
		payload       JSONB       NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS station_snapshots_fetched_at_idx
		ON station_snapshots (fetched_at DESC)`,
	`CREATE TABLE IF NOT EXISTS favorite_collections (
		owner_id   TEXT PRIMARY KEY,
		payload    JSONB       NOT NULL DEFAULT '[]'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// ErrNilPool is returned by Migrate when no pool was opened.
var ErrNilPool = errors.New("database: nil pool")

// Migrate applies the schema in one transaction. Every statement is
// idempotent, so both binaries run it at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return ErrNilPool
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return tx.Commit(ctx)
}
