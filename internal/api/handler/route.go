package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/route"
)

// RouteHandler handles route planning endpoints.
type RouteHandler struct {
	planner *route.Service
	logger  zerolog.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(planner *route.Service, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{
		planner: planner,
		logger:  logger,
	}
}

// PlanRoute handles POST /v1/routes:plan - plan a walk-bike-walk trip.
func (h *RouteHandler) PlanRoute(w http.ResponseWriter, r *http.Request) {
	var input models.RoutePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "origin and destination must be valid coordinates", errs)
		return
	}

	origin := input.Origin.Location().Coordinates()
	destination := input.Destination.Location().Coordinates()

	plan, err := h.planner.Plan(r.Context(), origin, destination)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if plan == nil {
		response.NotFound(w, r, "no station with available bikes to start the trip")
		return
	}
	plan.WithNames(input.Origin.Name, input.Destination.Name)

	w.Header().Set("Cache-Control", "private, max-age=30")
	response.JSON(w, r, http.StatusOK, models.NewRoutePlan(plan))
}
