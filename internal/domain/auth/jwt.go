// Package auth issues and validates the bearer tokens back-office operators
// present to the HTTP API.
package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/appctx"
)

// Roles known to the API.
const (
	// RoleOperator edits and finalizes batches.
	RoleOperator = "operator"
	// RoleAdmin additionally manages check ranges and references.
	RoleAdmin = "admin"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "paybatch",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// IssueToken signs a token for operatorID carrying roles.
func (s *JWTService) IssueToken(operatorID, name string, roles []string) (string, time.Time, error) {
	if operatorID == "" {
		return "", time.Time{}, apperror.NewValidation("operator id is required").
			WithDetail("field", "operatorId")
	}
	for _, r := range roles {
		if r != RoleOperator && r != RoleAdmin {
			return "", time.Time{}, apperror.NewValidation("unknown role").
				WithDetail("field", "roles").
				WithDetail("value", r)
		}
	}

	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:  name,
		Roles: slices.Clone(roles),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken verifies signature, issuer and expiry and returns the operator.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.Operator, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, apperror.NewUnauthorized("invalid token claims")
	}

	return &appctx.Operator{
		ID:    claims.Subject,
		Name:  claims.Name,
		Roles: claims.Roles,
	}, nil
}
