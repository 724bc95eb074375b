package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/favorite"
	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/place"
	"github.com/tashuroute/tashuroute/internal/report"
	"github.com/tashuroute/tashuroute/internal/station"
)

// writeError maps a domain error to a Problem response. Errors without a
// mapping are logged, reported and answered with a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, geo.ErrLocationUnavailable):
		response.LocationUnavailable(w, r, "the caller's location is required: pass lat and lon")
	case errors.Is(err, geo.ErrInvalidCoordinates):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, station.ErrStationNotFound):
		response.NotFound(w, r, "station not found")
	case errors.Is(err, station.ErrMalformedFeed):
		response.BadGateway(w, r, "station feed could not be read")
	case errors.Is(err, station.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "station information is temporarily unavailable")
	case errors.Is(err, place.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "place search is temporarily unavailable")
	case errors.Is(err, favorite.ErrInvalidOwner):
		response.Unauthorized(w, r, "authentication required")
	case errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(w, r, "request timed out")
	default:
		logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		report.ReportErrorWithOptions(err, report.Options{
			Tags: map[string]string{"path": r.URL.Path},
		})
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
