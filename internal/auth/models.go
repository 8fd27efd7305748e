package auth

import (
	"context"
	"time"
)

// User is the principal record as stored by the hosted datastore. The record
// is owned externally; this service only ever writes last_login and, on
// password change, password_hash.
type User struct {
	ID           string     `json:"id,omitempty"`
	Email        string     `json:"email,omitempty"`
	Name         string     `json:"name,omitempty"`
	Role         UserRole   `json:"role,omitempty"`
	PasswordHash string     `json:"password_hash,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// PublicUser is the projection safe to return to clients. It never carries
// the password hash.
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      UserRole   `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// Public returns the client-safe projection of the principal.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// UserStore is the subset of datastore operations the session issuer needs.
// The concrete implementation talks to the hosted table-query service.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
}
