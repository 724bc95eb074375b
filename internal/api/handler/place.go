package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/middleware"
	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/latest"
	"github.com/tashuroute/tashuroute/internal/place"
)

// PlaceHandler handles place search endpoints.
type PlaceHandler struct {
	places  *place.Service
	tracker *latest.Tracker
	logger  zerolog.Logger
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(places *place.Service, logger zerolog.Logger) *PlaceHandler {
	return &PlaceHandler{
		places:  places,
		tracker: latest.NewTracker(),
		logger:  logger,
	}
}

// SearchPlaces handles GET /v1/places?query= - keyword place search.
// A newer search from the same caller supersedes an in-flight one, which
// then answers 409.
func (h *PlaceHandler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	ticket, ctx := h.tracker.Begin(r.Context(), middleware.CallerKey(r))
	results, err := h.places.Search(ctx, query)

	if !h.tracker.Done(ticket) {
		h.logger.Debug().Str("caller", ticket.Key()).Msg("place search superseded")
		response.Conflict(w, r, "superseded by a newer search")
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := models.PlaceSearchResponse{
		Query:  place.NormalizeQuery(query),
		Places: make([]models.Place, len(results)),
	}
	for i, p := range results {
		out.Places[i] = models.NewPlace(p)

		nearest, ok, err := h.places.NearestStation(r.Context(), p)
		if err != nil {
			h.logger.Warn().Err(err).Str("place", p.Name).Msg("nearest station lookup failed")
			continue
		}
		if ok {
			st := models.NewStationWithDistance(nearest)
			out.Places[i].NearestStation = &st
		}
	}

	response.JSON(w, r, http.StatusOK, out)
}
