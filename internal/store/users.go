package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/classpulse/dashboard-api/internal/auth"
)

const usersTable = "users"

// publicColumns is the projection used for listings; the password hash never
// leaves the datastore on those paths.
const publicColumns = "id,email,name,role,created_at,last_login"

// Users implements auth.UserStore on top of the hosted datastore.
type Users struct {
	client *Client
	logger *zap.Logger
}

var _ auth.UserStore = (*Users)(nil)

// NewUsers creates the user store. Admin passthrough should use a Users built
// on the service-role client; everything else uses the anonymous client.
func NewUsers(client *Client, logger *zap.Logger) *Users {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Users{client: client, logger: logger}
}

// FindByEmail returns the full record (hash included) for the login path.
func (s *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, "email", email)
}

// FindByID returns the full record for the given principal id.
func (s *Users) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findOne(ctx, "id", id)
}

// Insert creates a principal and returns the stored representation.
func (s *Users) Insert(ctx context.Context, user *auth.User) (*auth.User, error) {
	var rows []auth.User
	if err := s.client.Table(usersTable).Insert(ctx, user, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrUpstream
	}
	return &rows[0], nil
}

// TouchLastLogin stamps a successful authentication on the record.
func (s *Users) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	patch := map[string]any{"last_login": at.Format(time.RFC3339)}
	return s.client.Table(usersTable).Eq("id", id).Update(ctx, patch, nil)
}

// SetPasswordHash replaces the stored digest for the given principal.
func (s *Users) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	patch := map[string]any{"password_hash": passwordHash}
	return s.client.Table(usersTable).Eq("id", id).Update(ctx, patch, nil)
}

// List returns all principals in the public projection.
func (s *Users) List(ctx context.Context) ([]auth.User, error) {
	var rows []auth.User
	if err := s.client.Table(usersTable).Select(publicColumns).Get(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies an arbitrary patch to a principal and returns the updated row.
func (s *Users) Update(ctx context.Context, id string, patch map[string]any) (*auth.User, error) {
	var rows []auth.User
	if err := s.client.Table(usersTable).Eq("id", id).Update(ctx, patch, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, auth.ErrUserNotFound
	}
	return &rows[0], nil
}

// Delete removes a principal record.
func (s *Users) Delete(ctx context.Context, id string) error {
	return s.client.Table(usersTable).Eq("id", id).Delete(ctx)
}

func (s *Users) findOne(ctx context.Context, column, value string) (*auth.User, error) {
	var rows []auth.User
	if err := s.client.Table(usersTable).Select("*").Eq(column, value).Limit(1).Get(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, auth.ErrUserNotFound
	}
	return &rows[0], nil
}
