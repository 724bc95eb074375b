package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/tashuroute/tashuroute/internal/api/middleware"
)

// GetDeviceID retrieves the authenticated device ID from the context.
// This is a convenience wrapper around middleware.GetDeviceID.
func GetDeviceID(ctx context.Context) string {
	return middleware.GetDeviceID(ctx)
}

// stationIDParam returns the decoded {stationId} path segment. chi matches on
// the escaped path when the request has one, so the segment may still carry
// percent escapes.
func stationIDParam(r *http.Request) string {
	id := chi.URLParam(r, "stationId")
	if r.URL.RawPath == "" {
		return id
	}
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}

// favoriteLocation is the canonical URL of a saved station.
func favoriteLocation(stationID string) string {
	return "/v1/me/favorites/" + url.PathEscape(stationID)
}
