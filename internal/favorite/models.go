// Package favorite stores each owner's favorite stations as a single
// collection that is fully re-read and re-written on every change.
package favorite

import (
	"errors"
	"time"

	"github.com/tashuroute/tashuroute/internal/station"
)

var (
	// ErrCorruptCollection indicates a stored collection could not be decoded.
	ErrCorruptCollection = errors.New("corrupt favorites collection")

	// ErrInvalidOwner indicates an empty owner id.
	ErrInvalidOwner = errors.New("invalid favorites owner")
)

// Favorite is a saved station. The station fields are a copy taken when it
// was saved; Nickname is nil when unset.
type Favorite struct {
	station.Station
	SavedAt  time.Time `json:"saved_at"`
	Nickname *string   `json:"nickname,omitempty"`
}

// DisplayName returns the nickname when set, else the station name.
func (f Favorite) DisplayName() string {
	if f.Nickname != nil {
		return *f.Nickname
	}
	return f.Name
}

func indexOf(favs []Favorite, id string) int {
	for i := range favs {
		if favs[i].ID == id {
			return i
		}
	}
	return -1
}

func nickname(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
