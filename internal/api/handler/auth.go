package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tashuroute/tashuroute/internal/api/response"
	"github.com/tashuroute/tashuroute/internal/auth"
)

// AuthHandler handles device token endpoints.
type AuthHandler struct {
	authService *auth.Service
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterDevice handles POST /v1/auth/device - issue an anonymous device token.
func (h *AuthHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	tokenResp, err := h.authService.RegisterDevice()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue device token")
		response.InternalError(w, r, "could not issue device token")
		return
	}

	h.logger.Info().Str("device_id", tokenResp.DeviceID).Msg("device registered")
	response.Created(w, r, "", tokenResp)
}

// RefreshToken handles POST /v1/auth/refresh - renew the caller's token.
// Requires a valid token; the device ID is kept.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	if deviceID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	tokenResp, err := h.authService.Refresh(deviceID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to refresh device token")
		response.InternalError(w, r, "token refresh failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokenResp)
}
