// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tashuroute/tashuroute/internal/database"
)

const devSigningKey = "local-dev-signing-key-change-in-production"

// Config holds all service configuration.
type Config struct {
	Port       string
	Env        string
	RequireTLS bool

	OTelEnabled  bool
	OTLPEndpoint string
	SentryDSN    string

	TashuAPIKey  string
	TashuBaseURL string
	KakaoAPIKey  string

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	DatabaseEnabled bool
	Database        database.Config

	StationCacheTTL time.Duration
	PlaceCacheTTL   time.Duration

	PubSubProjectID    string
	PubSubSubscription string
	RefreshInterval    time.Duration
	WorkerCount        int
}

// Load reads .env files (if present) and the environment. Variables already
// set in the environment take precedence over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:       getEnv("APP_PORT", "8080"),
		Env:        getEnv("APP_ENV", "development"),
		RequireTLS: getBool("REQUIRE_TLS", false),

		OTelEnabled:  getBool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),

		TashuAPIKey:  os.Getenv("TASHU_API_KEY"),
		TashuBaseURL: os.Getenv("TASHU_BASE_URL"),
		KakaoAPIKey:  os.Getenv("KAKAO_REST_API_KEY"),

		JWTSigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
		JWTIssuer:     getEnv("JWT_ISSUER", "https://api.tashuroute.kr"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "tashuroute-api"),

		DatabaseEnabled: getBool("DATABASE_ENABLED", false),
		Database:        databaseFromEnv(),

		StationCacheTTL: getDuration("STATION_CACHE_TTL", 60*time.Second),
		PlaceCacheTTL:   getDuration("PLACE_CACHE_TTL", 5*time.Minute),

		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: getEnv("PUBSUB_SUBSCRIPTION", "tashuroute-worker"),
		RefreshInterval:    getDuration("REFRESH_INTERVAL", time.Minute),
		WorkerCount:        getInt("WORKER_COUNT", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDevSigningKey reports whether the built-in JWT key is in use.
func (c *Config) UsesDevSigningKey() bool {
	return c.JWTSigningKey == devSigningKey
}

// Validate checks settings that would make the service unsafe or unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("APP_PORT is empty"))
	}
	if c.IsProduction() && c.UsesDevSigningKey() {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must be set in production"))
	}
	if c.StationCacheTTL <= 0 {
		errs = append(errs, errors.New("STATION_CACHE_TTL must be positive"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL must be positive"))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, errors.New("WORKER_COUNT must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func databaseFromEnv() database.Config {
	def := database.DefaultConfig()
	return database.Config{
		URL:             os.Getenv("DATABASE_URL"),
		Host:            getEnv("DB_HOST", def.Host),
		Port:            getInt("DB_PORT", def.Port),
		User:            getEnv("DB_USER", def.User),
		Password:        getEnv("DB_PASSWORD", def.Password),
		Database:        getEnv("DB_NAME", def.Database),
		SSLMode:         getEnv("DB_SSL_MODE", def.SSLMode),
		MaxConns:        int32(getInt("DB_MAX_CONNS", int(def.MaxConns))), //nolint:gosec // small config value
		MinConns:        int32(getInt("DB_MIN_CONNS", int(def.MinConns))), //nolint:gosec // small config value
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime),
		ConnectTimeout:  getDuration("DB_CONNECT_TIMEOUT", def.ConnectTimeout),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getDuration accepts Go durations ("90s") or bare seconds ("90").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
