// Package tashu provides a station feed client for the TASHU public bike
// service in Daejeon.
package tashu

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tashuroute/tashuroute/internal/provider/resilience"
	"github.com/tashuroute/tashuroute/internal/station"
)

const (
	// DefaultBaseURL is the base URL for the TASHU open API.
	DefaultBaseURL = "https://bikeapp.tashu.or.kr:50041"

	// ProviderName identifies this provider.
	ProviderName = "tashu"

	// DemoProviderName identifies the built-in demo feed.
	DemoProviderName = "tashu-demo"

	stationPath = "/v1/openapi/station"
)

// ClientConfig holds configuration for the TASHU client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is sent as the api-token header. When empty the client serves
	// the demo feed without contacting the upstream.
	APIKey string

	// HTTPClient is the HTTP client to use. If nil, a resilient client is
	// created and registered in Registry.
	HTTPClient HTTPDoer

	// Registry tracks upstream health for the resilient client. Optional.
	Registry *resilience.Registry

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration

	// Now overrides the clock used to stamp feeds.
	Now func() time.Time
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches the TASHU station feed.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	now        func() time.Time
}

var _ station.Provider = (*Client)(nil)

// NewClient creates a new TASHU client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = timeout
		rc.InitialInterval = 200 * time.Millisecond
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		now:        now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	if c.apiKey == "" {
		return DemoProviderName
	}
	return ProviderName
}

// IsDemo reports whether the client serves the built-in demo feed.
func (c *Client) IsDemo() bool {
	return c.apiKey == ""
}

// FetchFeed retrieves the current station feed.
func (c *Client) FetchFeed(ctx context.Context) (*station.Feed, error) {
	if c.IsDemo() {
		return &station.Feed{
			Records:   station.Records(DemoStations()),
			Provider:  DemoProviderName,
			FetchedAt: c.now(),
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+stationPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &station.Error{
			Provider: ProviderName,
			Code:     "FETCH_FAILED",
			Message:  "fetch station feed",
			Err:      fmt.Errorf("%w: %w", station.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &station.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d from station endpoint", resp.StatusCode),
			Err:      station.ErrProviderUnavailable,
		}
	}

	records, err := station.DecodeFeed(resp.Body)
	if err != nil {
		return nil, &station.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_FEED",
			Message:  "decode station feed",
			Err:      err,
		}
	}

	return &station.Feed{
		Records:   records,
		Provider:  ProviderName,
		FetchedAt: c.now(),
	}, nil
}
