package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when all retry attempts have been exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the upstream in the registry and breaker.
	Name string

	// Timeout bounds each individual attempt (default 10s).
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt (default 3).
	MaxRetries uint64

	// DisableRetries makes every request a single attempt.
	DisableRetries bool

	// InitialInterval is the first backoff interval (default 100ms).
	InitialInterval time.Duration

	// MaxInterval caps the backoff interval (default 5s).
	MaxInterval time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives the client on construction and every request outcome.
	// Optional.
	Registry *Registry

	// Logger records breaker state changes.
	Logger zerolog.Logger
}

// DefaultClientConfig returns defaults for an upstream client.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cb,
		Logger:          zerolog.Nop(),
	}
}

// Client is an HTTP client with circuit breaking and exponential-backoff
// retries. 5xx and 429 responses count as failures; other responses are
// returned to the caller as-is.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	registry   *Registry
	config     ClientConfig
}

// NewClient creates a resilient client and registers it when a Registry is set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}
	if cbConfig.OnStateChange == nil {
		logger := cfg.Logger
		cbConfig.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("upstream", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		}
	}

	c := &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    NewCircuitBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not response
		registry:   cfg.Registry,
		config:     cfg,
	}

	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}
	return c
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return c.name
}

// Do executes the request using its own context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes the request with retries and circuit breaking.
// Returns ErrCircuitOpen without contacting the upstream while the breaker is
// open. When retries are exhausted on a failing response, that last response
// is returned with a nil error so callers can inspect its status.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.execute(ctx, req)
	c.record(resp, err)
	return resp, err
}

func (c *Client) execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	retries := c.config.MaxRetries
	if c.config.DisableRetries {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)

	var last *http.Response
	operation := func() error {
		if last != nil {
			// Drain the failed response of the previous attempt.
			last.Body.Close()
			last = nil
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // closed by caller or next attempt
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if isTransient(r.StatusCode) {
				return r, &ServerError{StatusCode: r.StatusCode, RetryAfter: retryAfter(r)}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			last = resp
			return err
		}

		last = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if last != nil {
			return last, nil
		}
		if errors.Is(err, ErrCircuitOpen) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}
	return last, nil
}

func (c *Client) record(resp *http.Response, err error) {
	if c.registry == nil {
		return
	}
	if err == nil && isTransient(resp.StatusCode) {
		err = &ServerError{StatusCode: resp.StatusCode}
	}
	c.registry.Record(c.name, err)
}

func isTransient(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

func retryAfter(r *http.Response) time.Duration {
	secs, err := strconv.Atoi(r.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// ServerError is a transient upstream status (5xx or 429).
type ServerError struct {
	StatusCode int
	RetryAfter time.Duration
}

func (e *ServerError) Error() string {
	return "upstream error: " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current breaker state.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.breaker.State()
}

// CircuitBreakerCounts returns the breaker's current counts.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
