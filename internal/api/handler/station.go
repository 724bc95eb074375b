package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/geo"
	"github.com/tashuroute/tashuroute/internal/route"
	"github.com/tashuroute/tashuroute/internal/station"
)

// StationHandler handles station endpoints.
type StationHandler struct {
	stations *station.Service
	logger   zerolog.Logger
}

// NewStationHandler creates a new StationHandler.
func NewStationHandler(stations *station.Service, logger zerolog.Logger) *StationHandler {
	return &StationHandler{
		stations: stations,
		logger:   logger,
	}
}

// ListStations handles GET /v1/stations - the full station directory.
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	dir, err := h.stations.Directory(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	response.JSON(w, r, http.StatusOK, models.NewStationList(dir))
}

// GetStation handles GET /v1/stations/{stationId}. When lat and lon are
// given the response includes the distance from that point.
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	stationID := stationIDParam(r)

	st, err := h.stations.Station(r.Context(), stationID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	origin, err := locationFromQuery(r)
	switch {
	case errors.Is(err, geo.ErrLocationUnavailable):
		response.JSON(w, r, http.StatusOK, models.NewStation(st))
	case err != nil:
		writeError(w, r, h.logger, err)
	default:
		response.JSON(w, r, http.StatusOK, models.NewStationWithDistance(station.WithDistance{
			Station:  st,
			Distance: geo.Distance(origin, st.Position()),
		}))
	}
}

// NearestStation handles GET /v1/stations:nearest?lat&lon[&available=true].
func (h *StationHandler) NearestStation(w http.ResponseWriter, r *http.Request) {
	origin, err := locationFromQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	requireBikes := false
	if v := r.URL.Query().Get("available"); v != "" {
		requireBikes, err = strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, r, "available must be a boolean", []models.FieldError{
				{Field: "available", Message: "must be true or false", Code: "INVALID"},
			})
			return
		}
	}

	var (
		nearest station.WithDistance
		ok      bool
	)
	if requireBikes {
		nearest, ok, err = h.stations.NearestAvailable(r.Context(), origin)
	} else {
		nearest, ok, err = h.stations.Nearest(r.Context(), origin)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !ok {
		if requireBikes {
			response.NotFound(w, r, "no station with available bikes")
		} else {
			response.NotFound(w, r, "no station found")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NearestStationResponse{
		Origin:       models.NewLocation(origin),
		RequireBikes: requireBikes,
		Station:      models.NewStationWithDistance(nearest),
		WalkMinutes:  route.Minutes(nearest.Distance, route.WalkSpeedKmh),
	})
}
