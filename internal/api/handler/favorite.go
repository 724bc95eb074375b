package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/favorite"
	"github.com/tashuroute/tashuroute/internal/station"
)

// FavoriteHandler handles the caller's saved stations.
type FavoriteHandler struct {
	favorites *favorite.Store
	stations  *station.Service
	logger    zerolog.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favorites *favorite.Store, stations *station.Service, logger zerolog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		stations:  stations,
		logger:    logger,
	}
}

// ListFavorites handles GET /v1/me/favorites.
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.favorites.List(r.Context(), GetDeviceID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := models.FavoriteList{Favorites: make([]models.Favorite, len(favs))}
	for i, f := range favs {
		out.Favorites[i] = models.NewFavorite(f)
	}
	w.Header().Set("Cache-Control", "private, no-store")
	response.JSON(w, r, http.StatusOK, out)
}

// AddFavorite handles POST /v1/me/favorites. Saving a station that is
// already saved answers 200 with the existing entry.
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var input models.AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "invalid favorite", errs)
		return
	}

	ctx := r.Context()
	owner := GetDeviceID(ctx)

	st, err := h.stations.Station(ctx, input.StationID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	added, err := h.favorites.Add(ctx, owner, st, input.Nickname)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	fav, _, err := h.favorites.Get(ctx, owner, st.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if !added {
		response.JSON(w, r, http.StatusOK, models.NewFavorite(fav))
		return
	}
	h.logger.Info().Str("device_id", owner).Str("station_id", st.ID).Msg("favorite added")
	response.Created(w, r, favoriteLocation(st.ID), models.NewFavorite(fav))
}

// ClearFavorites handles DELETE /v1/me/favorites.
func (h *FavoriteHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	if err := h.favorites.Clear(r.Context(), GetDeviceID(r.Context())); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// GetFavorite handles GET /v1/me/favorites/{stationId} - membership check.
func (h *FavoriteHandler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	stationID := stationIDParam(r)

	fav, ok, err := h.favorites.Get(r.Context(), GetDeviceID(r.Context()), stationID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := models.FavoriteMembership{StationID: stationID, Saved: ok}
	if ok {
		f := models.NewFavorite(fav)
		out.Favorite = &f
	}
	response.JSON(w, r, http.StatusOK, out)
}

// RemoveFavorite handles DELETE /v1/me/favorites/{stationId}.
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	stationID := stationIDParam(r)

	removed, err := h.favorites.Remove(r.Context(), GetDeviceID(r.Context()), stationID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !removed {
		response.NotFound(w, r, "station is not a favorite")
		return
	}
	response.NoContent(w, r)
}

// UpdateNickname handles PATCH /v1/me/favorites/{stationId}.
func (h *FavoriteHandler) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	stationID := stationIDParam(r)

	var input models.UpdateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "invalid nickname", errs)
		return
	}

	ctx := r.Context()
	owner := GetDeviceID(ctx)

	found, err := h.favorites.UpdateNickname(ctx, owner, stationID, input.Nickname)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !found {
		response.NotFound(w, r, "station is not a favorite")
		return
	}

	fav, _, err := h.favorites.Get(ctx, owner, stationID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewFavorite(fav))
}
