package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenExpiry is how long device tokens are valid. Clients renew with
// POST /v1/auth/refresh before expiry; an expired token means a new device.
const DefaultTokenExpiry = 30 * 24 * time.Hour

var (
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrAccessTokenExpired = errors.New("access token has expired")
)

// JWTClaims are the claims of a device token. The subject is the device ID.
type JWTClaims struct {
	jwt.RegisteredClaims

	// DeviceID mirrors Subject for clients that decode the payload.
	DeviceID string `json:"did"`
}

// JWTConfig configures HS256 device tokens.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string

	// Expiry overrides DefaultTokenExpiry when non-zero.
	Expiry time.Duration
}

// JWTService signs and verifies device tokens.
type JWTService struct {
	key    []byte
	cfg    JWTConfig
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService builds a service from cfg.
func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.Expiry == 0 {
		cfg.Expiry = DefaultTokenExpiry
	}
	s := &JWTService{key: []byte(cfg.SigningKey), cfg: cfg, now: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

// GenerateAccessToken signs a token for deviceID and returns it with its
// expiry.
func (s *JWTService) GenerateAccessToken(deviceID string) (string, time.Time, error) {
	issued := s.now()
	expires := issued.Add(s.cfg.Expiry)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Subject:   deviceID,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		DeviceID: deviceID,
	}).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign device token: %w", err)
	}
	return signed, expires, nil
}

// ValidateAccessToken verifies signature, issuer, audience and lifetime.
// Expiry is reported as ErrAccessTokenExpired so clients know to register
// again; every other failure wraps ErrInvalidAccessToken.
func (s *JWTService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	var claims JWTClaims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrAccessTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidAccessToken)
	}
	return &claims, nil
}
