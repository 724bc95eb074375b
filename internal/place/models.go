// Package place provides free-text place search used to pick a destination.
package place

import (
	"context"
	"errors"

	"github.com/tashuroute/tashuroute/internal/geo"
)

var (
	// ErrProviderUnavailable indicates the search upstream failed or is not configured.
	ErrProviderUnavailable = errors.New("place provider unavailable")
)

// Place is one search result.
type Place struct {
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	RoadAddress string          `json:"road_address,omitempty"`
	Coordinates geo.Coordinates `json:"coordinates"`
}

// Provider searches places by keyword.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// Search returns places for a non-empty query, in upstream order.
	Search(ctx context.Context, query string) ([]Place, error)
}

// Error provides detailed error information from a place provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
