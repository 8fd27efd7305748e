package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeRefresh is the claim marker that distinguishes refresh tokens from
// access tokens. Access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

// TokenClaims is the claim set carried by every issued token.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email     string   `json:"email,omitempty"`
	UserRole  UserRole `json:"role,omitempty"`
	TokenType string   `json:"type,omitempty"`
}

// UserID returns the principal id carried in the subject claim.
func (c *TokenClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Role returns the principal's global role.
func (c *TokenClaims) Role() UserRole {
	return c.UserRole
}

// HasRole checks the role claim against an exact required role. There is no
// hierarchy: admin is not a superset of staff.
func (c *TokenClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}

// IsRefresh reports whether this claim set belongs to a refresh token.
func (c *TokenClaims) IsRefresh() bool {
	return c.TokenType == TokenTypeRefresh
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedTime returns the issued at time
func (c *TokenClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
