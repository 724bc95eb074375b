package models

import (
	"github.com/tashuroute/tashuroute/internal/favorite"
)

// MaxNicknameLength bounds favorite nicknames in runes.
const MaxNicknameLength = 40

// Favorite is a saved station on the wire.
type Favorite struct {
	Station     Station   `json:"station"`
	SavedAt     Timestamp `json:"savedAt"`
	Nickname    *string   `json:"nickname,omitempty"`
	DisplayName string    `json:"displayName"`
}

// NewFavorite converts a domain favorite.
func NewFavorite(f favorite.Favorite) Favorite {
	return Favorite{
		Station:     NewStation(f.Station),
		SavedAt:     Timestamp(f.SavedAt),
		Nickname:    f.Nickname,
		DisplayName: f.DisplayName(),
	}
}

// FavoriteList is the response of GET /v1/me/favorites.
type FavoriteList struct {
	Favorites []Favorite `json:"favorites"`
}

// AddFavoriteRequest is the request body of POST /v1/me/favorites.
type AddFavoriteRequest struct {
	StationID string `json:"stationId"`
	Nickname  string `json:"nickname,omitempty"`
}

// Validate returns field errors for the request.
func (r AddFavoriteRequest) Validate() []FieldError {
	var errs []FieldError
	if r.StationID == "" {
		errs = append(errs, FieldError{Field: "stationId", Message: "is required", Code: "REQUIRED"})
	}
	errs = append(errs, validateNickname(r.Nickname)...)
	return errs
}

// UpdateNicknameRequest is the request body of PATCH /v1/me/favorites/{stationId}.
// An empty nickname clears it.
type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

// Validate returns field errors for the request.
func (r UpdateNicknameRequest) Validate() []FieldError {
	return validateNickname(r.Nickname)
}

func validateNickname(nick string) []FieldError {
	if len([]rune(nick)) > MaxNicknameLength {
		return []FieldError{{Field: "nickname", Message: "must be at most 40 characters", Code: "TOO_LONG"}}
	}
	return nil
}

// FavoriteMembership reports whether a station is saved.
type FavoriteMembership struct {
	StationID string    `json:"stationId"`
	Saved     bool      `json:"saved"`
	Favorite  *Favorite `json:"favorite,omitempty"`
}
