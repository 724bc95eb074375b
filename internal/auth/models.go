// Package auth issues and validates device tokens. A device token identifies
// an anonymous installation; its subject owns that device's favorites.
package auth

import "time"

// TokenResponse is returned when a device token is issued.
type TokenResponse struct {
	// AccessToken is the signed JWT.
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the number of seconds until the token expires.
	ExpiresIn int64 `json:"expires_in"`

	// DeviceID is the token subject.
	DeviceID string `json:"device_id"`

	// ExpiresAt is the absolute expiry.
	ExpiresAt time.Time `json:"expires_at"`
}
