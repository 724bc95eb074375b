package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashuroute/tashuroute/internal/auth"
)

func TestAuthHandler_RegisterDevice(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodPost, "/v1/auth/device", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[auth.TokenResponse](t, rec)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	deviceID, err := f.auth.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.DeviceID, deviceID)
}

func TestAuthHandler_RefreshKeepsDevice(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodPost, "/v1/auth/refresh", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[auth.TokenResponse](t, rec)
	deviceID, err := f.auth.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testDeviceID, deviceID)
}
