package service

import (
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by session tokens.
type Claims struct {
	AccountID uuid.UUID   `json:"id"`
	Role      entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and validating session tokens.
type TokenService interface {
	// GenerateToken issues a session token for the account acting under the role.
	GenerateToken(accountID uuid.UUID, role entity.Role) (string, error)

	// ValidateToken checks signature and expiry and returns the claims.
	ValidateToken(tokenString string) (*Claims, error)

	// TokenTTL returns how long issued tokens stay valid.
	TokenTTL() time.Duration
}
