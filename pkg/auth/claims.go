package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/groupcollect/groupcollect-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	Role     enums.UserRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Username string         `json:"username,omitempty"`
	Role     enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller as seen by domain services.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the caller moderates collects.
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// Is reports whether the caller is the given user.
func (a Actor) Is(userID uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == userID
}
