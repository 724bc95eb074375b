package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/auth"
)

const testSigningKey = "test-secret-key-for-testing-only"

func newAuthService(expiry time.Duration) *auth.Service {
	return auth.NewService(auth.NewJWTService(auth.JWTConfig{
		SigningKey: testSigningKey,
		Issuer:     "https://api.tashuroute.kr",
		Audience:   "tashuroute-api",
		Expiry:     expiry,
	}))
}

func TestAuth(t *testing.T) {
	service := newAuthService(0)
	issued, err := service.RegisterDevice()
	require.NoError(t, err)

	stale, err := newAuthService(-time.Minute).RegisterDevice()
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"no scheme", "token123", http.StatusUnauthorized, "invalid authorization header format"},
		{"basic auth", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "invalid authorization header format"},
		{"scheme without space", "bearertoken123", http.StatusUnauthorized, "invalid authorization header format"},
		{"bare scheme", "Bearer", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer invalid.jwt.token", http.StatusUnauthorized, "invalid access token"},
		{"expired token", "Bearer " + stale.AccessToken, http.StatusUnauthorized, "expired"},
		{"valid token", "Bearer " + issued.AccessToken, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + issued.AccessToken, http.StatusOK, ""},
		{"uppercase scheme", "BEARER " + issued.AccessToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var device string
			handler := middleware.Auth(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				device = middleware.GetDeviceID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/me/favorites", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, issued.DeviceID, device)
				return
			}
			assert.Empty(t, device)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "/v1/me/favorites")
			if tt.wantDetail != "" {
				assert.Contains(t, rec.Body.String(), tt.wantDetail)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	service := newAuthService(0)
	issued, err := service.RegisterDevice()
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantDevice string
	}{
		{"anonymous", "", ""},
		{"valid token", "Bearer " + issued.AccessToken, issued.DeviceID},
		{"garbage token", "Bearer invalid.jwt.token", ""},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := "unset"
			handler := middleware.OptionalAuth(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				device = middleware.GetDeviceID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/places?query=cafe", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantDevice, device)
		})
	}
}

func TestGetDeviceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, middleware.GetDeviceID(req.Context()))

	ctx := middleware.WithDeviceID(req.Context(), "dev_9")
	assert.Equal(t, "dev_9", middleware.GetDeviceID(ctx))
}
