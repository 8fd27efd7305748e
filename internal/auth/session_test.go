package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classpulse/dashboard-api/internal/auth"
)

// memoryStore is an in-memory UserStore used to drive the session issuer
// without a datastore.
type memoryStore struct {
	mu       sync.Mutex
	byEmail  map[string]*auth.User
	nextID   int
	touchErr error
	touched  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byEmail: map[string]*auth.User{}}
}

func (m *memoryStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, auth.ErrUserNotFound
}

func (m *memoryStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memoryStore) Insert(_ context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *user
	cp.ID = fmt.Sprintf("user-%d", m.nextID)
	m.byEmail[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (m *memoryStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchErr != nil {
		return m.touchErr
	}
	m.touched++
	for _, u := range m.byEmail {
		if u.ID == id {
			t := at
			u.LastLogin = &t
		}
	}
	return nil
}

func (m *memoryStore) SetPasswordHash(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func newAuthenticator(t *testing.T) (*auth.Authenticator, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	tokens := newTokenService(t, "session-test-key")
	auther := auth.NewAuthenticator(store, tokens, zap.NewNop(), auth.WithHashCost(4))
	return auther, store
}

func signupViewer(t *testing.T, auther *auth.Authenticator, email string) *auth.PublicUser {
	t.Helper()
	user, err := auther.Signup(context.Background(), auth.SignupInput{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestAuthenticator_Signup(t *testing.T) {
	auther, store := newAuthenticator(t)

	user := signupViewer(t, auther, "new@example.com")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, auth.RoleViewer, user.Role, "omitted role defaults to viewer")
	assert.NotNil(t, user.CreatedAt)

	stored := store.byEmail["new@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, auth.ComparePasswordAndHash("password123", stored.PasswordHash))
}

func TestAuthenticator_SignupConflict(t *testing.T) {
	auther, _ := newAuthenticator(t)
	signupViewer(t, auther, "dup@example.com")

	_, err := auther.Signup(context.Background(), auth.SignupInput{
		Email:    "dup@example.com",
		Password: "password456",
		Name:     "Other",
	})
	assert.Equal(t, auth.ErrEmailTaken, err)
}

func TestAuthenticator_SignupValidation(t *testing.T) {
	auther, _ := newAuthenticator(t)

	tests := []struct {
		name  string
		input auth.SignupInput
	}{
		{
			name:  "bad email",
			input: auth.SignupInput{Email: "not-an-email", Password: "password123", Name: "X"},
		},
		{
			name:  "short password",
			input: auth.SignupInput{Email: "a@x.com", Password: "short", Name: "X"},
		},
		{
			name:  "missing name",
			input: auth.SignupInput{Email: "a@x.com", Password: "password123"},
		},
		{
			name:  "unknown role",
			input: auth.SignupInput{Email: "a@x.com", Password: "password123", Name: "X", Role: "owner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auther.Signup(context.Background(), tt.input)
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
			assert.Equal(t, auth.TextCodeValidation, richErr.TextCode)
		})
	}
}

func TestAuthenticator_Login(t *testing.T) {
	auther, store := newAuthenticator(t)
	signupViewer(t, auther, "login@example.com")

	pair, user, err := auther.Login(context.Background(), "login@example.com", "password123")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(86400), pair.ExpiresIn)
	assert.Equal(t, "login@example.com", user.Email)
	assert.Equal(t, 1, store.touched)
}

func TestAuthenticator_LoginRejections(t *testing.T) {
	auther, _ := newAuthenticator(t)
	signupViewer(t, auther, "login@example.com")

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := auther.Login(context.Background(), "nobody@example.com", "password123")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := auther.Login(context.Background(), "login@example.com", "password124")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})
}

func TestAuthenticator_LoginSurvivesTouchFailure(t *testing.T) {
	auther, store := newAuthenticator(t)
	signupViewer(t, auther, "login@example.com")
	store.touchErr = fmt.Errorf("datastore unavailable")

	pair, _, err := auther.Login(context.Background(), "login@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestAuthenticator_Refresh(t *testing.T) {
	auther, _ := newAuthenticator(t)
	signupViewer(t, auther, "refresh@example.com")

	pair, _, err := auther.Login(context.Background(), "refresh@example.com", "password123")
	require.NoError(t, err)

	refreshed, err := auther.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, pair.AccessToken, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken, "refresh never mints a new refresh token")
	assert.Equal(t, int64(86400), refreshed.ExpiresIn)
}

func TestAuthenticator_RefreshRejections(t *testing.T) {
	auther, _ := newAuthenticator(t)
	signupViewer(t, auther, "refresh@example.com")

	pair, _, err := auther.Login(context.Background(), "refresh@example.com", "password123")
	require.NoError(t, err)

	t.Run("access token is not a refresh credential", func(t *testing.T) {
		_, err := auther.Refresh(context.Background(), pair.AccessToken)
		assert.Equal(t, auth.ErrInvalidRefreshToken, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := auther.Refresh(context.Background(), "not-a-token")
		assert.Equal(t, auth.ErrInvalidRefreshToken, err)
	})
}

func TestAuthenticator_CurrentUser(t *testing.T) {
	auther, _ := newAuthenticator(t)
	user := signupViewer(t, auther, "me@example.com")

	t.Run("found", func(t *testing.T) {
		got, err := auther.CurrentUser(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("record gone", func(t *testing.T) {
		_, err := auther.CurrentUser(context.Background(), "user-999")
		assert.Equal(t, auth.ErrUserNotFound, err)
	})
}

func TestAuthenticator_ChangePassword(t *testing.T) {
	auther, _ := newAuthenticator(t)
	user := signupViewer(t, auther, "rotate@example.com")

	t.Run("wrong old password", func(t *testing.T) {
		err := auther.ChangePassword(context.Background(), user.ID, auth.ChangePasswordInput{
			OldPassword: "wrongpassword",
			NewPassword: "newpassword456",
		})
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	t.Run("rotates the digest", func(t *testing.T) {
		err := auther.ChangePassword(context.Background(), user.ID, auth.ChangePasswordInput{
			OldPassword: "password123",
			NewPassword: "newpassword456",
		})
		require.NoError(t, err)

		_, _, err = auther.Login(context.Background(), "rotate@example.com", "password123")
		assert.Equal(t, auth.ErrInvalidCredentials, err)

		_, _, err = auther.Login(context.Background(), "rotate@example.com", "newpassword456")
		assert.NoError(t, err)
	})
}
