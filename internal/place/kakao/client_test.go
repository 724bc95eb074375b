package kakao_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/place/kakao"
)

func newClient(url, key string) *kakao.Client {
	return kakao.NewClient(kakao.ClientConfig{BaseURL: url, APIKey: key, HTTPClient: http.DefaultClient})
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/local/search/keyword.json", r.URL.Path)
		assert.Equal(t, "대전 시청", r.URL.Query().Get("query"))
		assert.Equal(t, "KakaoAK test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documents":[
			{"place_name":"대전광역시청","address_name":"대전 서구 둔산동 1420","road_address_name":"대전 서구 둔산로 100","x":"127.384834","y":"36.350411"},
			{"place_name":"broken","address_name":"","road_address_name":"","x":"","y":"36.3"}
		],"meta":{"total_count":2}}`))
	}))
	defer server.Close()

	places, err := newClient(server.URL, "test-key").Search(context.Background(), "대전 시청")
	require.NoError(t, err)
	require.Len(t, places, 1)

	assert.Equal(t, "대전광역시청", places[0].Name)
	assert.Equal(t, "대전 서구 둔산로 100", places[0].RoadAddress)
	assert.InDelta(t, 36.350411, places[0].Coordinates.Lat, 1e-9)
	assert.InDelta(t, 127.384834, places[0].Coordinates.Lon, 1e-9)
}

func TestClient_Search_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"errorType":"AccessDeniedError"}`},
		{"server error", http.StatusBadGateway, ``},
		{"bad json", http.StatusOK, `{"documents":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL, "k").Search(context.Background(), "x")
			assert.ErrorIs(t, err, place.ErrProviderUnavailable)
		})
	}
}

func TestClient_Search_NoKey(t *testing.T) {
	_, err := newClient("http://127.0.0.1:1", "").Search(context.Background(), "x")

	var pErr *place.Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "NOT_CONFIGURED", pErr.Code)
	assert.ErrorIs(t, err, place.ErrProviderUnavailable)
}
