// Package kakao provides a place search client for the Kakao Local keyword
// search API.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Kakao API.
	DefaultBaseURL = "https://dapi.kakao.com"

	// ProviderName identifies this provider.
	ProviderName = "kakao"

	keywordPath = "/v2/local/search/keyword.json"
)

// ClientConfig holds configuration for the Kakao client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is the REST API key sent as "KakaoAK <key>".
	APIKey string

	// HTTPClient is the HTTP client to use. If nil, a resilient client is created.
	HTTPClient HTTPDoer

	// Registry tracks upstream health for the resilient client. Optional.
	Registry *resilience.Registry

	// Timeout for individual API requests (default: 5s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Kakao Local API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

var _ place.Provider = (*Client)(nil)

// NewClient creates a new Kakao client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 5 * time.Second
		}
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = timeout
		rc.MaxRetries = 2
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type keywordResponse struct {
	Documents []document `json:"documents"`
}

type document struct {
	PlaceName       string `json:"place_name"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	X               string `json:"x"`
	Y               string `json:"y"`
}

// Search runs a keyword search.
func (c *Client) Search(ctx context.Context, query string) ([]place.Place, error) {
	if c.apiKey == "" {
		return nil, &place.Error{
			Provider: ProviderName,
			Code:     "NOT_CONFIGURED",
			Message:  "kakao api key not configured",
			Err:      place.ErrProviderUnavailable,
		}
	}

	u := c.baseURL + keywordPath + "?" + url.Values{"query": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &place.Error{
			Provider: ProviderName,
			Code:     "FETCH_FAILED",
			Message:  "search places",
			Err:      fmt.Errorf("%w: %w", place.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &place.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d from keyword search", resp.StatusCode),
			Err:      place.ErrProviderUnavailable,
		}
	}

	var result keywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &place.Error{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "decode keyword search response",
			Err:      fmt.Errorf("%w: %w", place.ErrProviderUnavailable, err),
		}
	}

	places := make([]place.Place, 0, len(result.Documents))
	for _, d := range result.Documents {
		if p, ok := toPlace(d); ok {
			places = append(places, p)
		}
	}
	return places, nil
}

// toPlace converts a document; x is longitude and y latitude.
func toPlace(d document) (place.Place, bool) {
	lon, err := strconv.ParseFloat(strings.TrimSpace(d.X), 64)
	if err != nil {
		return place.Place{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(d.Y), 64)
	if err != nil {
		return place.Place{}, false
	}
	coords := geo.Coordinates{Lat: lat, Lon: lon}
	if coords.Validate() != nil {
		return place.Place{}, false
	}

	return place.Place{
		Name:        d.PlaceName,
		Address:     d.AddressName,
		RoadAddress: d.RoadAddressName,
		Coordinates: coords,
	}, true
}
