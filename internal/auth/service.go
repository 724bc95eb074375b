package auth

import (
	"time"

	"github.com/google/uuid"
)

// DeviceIDPrefix marks device subjects.
const DeviceIDPrefix = "dev_"

// Service issues device tokens.
type Service struct {
	jwt *JWTService
}

// NewService creates a new auth service.
func NewService(jwtService *JWTService) *Service {
	return &Service{jwt: jwtService}
}

// RegisterDevice mints a new device id and a token for it.
func (s *Service) RegisterDevice() (*TokenResponse, error) {
	return s.issue(NewDeviceID())
}

// Refresh issues a fresh token for an already authenticated device.
func (s *Service) Refresh(deviceID string) (*TokenResponse, error) {
	if deviceID == "" {
		return nil, ErrInvalidAccessToken
	}
	return s.issue(deviceID)
}

// ValidateAccessToken returns the device id of a valid token.
func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) issue(deviceID string) (*TokenResponse, error) {
	token, expiresAt, err := s.jwt.GenerateAccessToken(deviceID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		DeviceID:    deviceID,
		ExpiresAt:   expiresAt,
	}, nil
}

// NewDeviceID returns a random device id.
func NewDeviceID() string {
	return DeviceIDPrefix + uuid.NewString()
}
