package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classpulse/dashboard-api/internal/auth"
	"github.com/classpulse/dashboard-api/internal/store"
)

func usersWith(t *testing.T, handler http.HandlerFunc) *store.Users {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return store.NewUsers(store.NewClient(srv.URL, "anon-key", zap.NewNop()), zap.NewNop())
}

func TestUsers_FindByEmail(t *testing.T) {
	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.a@x.com", r.URL.Query().Get("email"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"u1","email":"a@x.com","role":"staff","password_hash":"$2a$04$x"}]`))
	})

	user, err := users.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, auth.RoleStaff, user.Role)
	assert.NotEmpty(t, user.PasswordHash, "login path needs the stored digest")
}

func TestUsers_FindByEmailMissing(t *testing.T) {
	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := users.FindByEmail(context.Background(), "nobody@x.com")
	assert.Equal(t, auth.ErrUserNotFound, err)
}

func TestUsers_Insert(t *testing.T) {
	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		var sent map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "a@x.com", sent["email"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"u1","email":"a@x.com","role":"viewer"}]`))
	})

	created, err := users.Insert(context.Background(), &auth.User{Email: "a@x.com", Role: auth.RoleViewer})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.ID)
}

func TestUsers_InsertEmptyRepresentation(t *testing.T) {
	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := users.Insert(context.Background(), &auth.User{Email: "a@x.com"})
	assert.Equal(t, store.ErrUpstream, err)
}

func TestUsers_TouchLastLogin(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))

		var patch map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, at.Format(time.RFC3339), patch["last_login"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	assert.NoError(t, users.TouchLastLogin(context.Background(), "u1", at))
}

func TestUsers_List(t *testing.T) {
	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id,email,name,role,created_at,last_login", r.URL.Query().Get("select"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"u1"},{"id":"u2"}]`))
	})

	rows, err := users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUsers_Update(t *testing.T) {
	t.Run("patched row returned", func(t *testing.T) {
		users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"u1","name":"Renamed"}]`))
		})

		updated, err := users.Update(context.Background(), "u1", map[string]any{"name": "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
	})

	t.Run("no matching row", func(t *testing.T) {
		users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := users.Update(context.Background(), "u404", map[string]any{"name": "Renamed"})
		assert.Equal(t, auth.ErrUserNotFound, err)
	})
}

func TestUsers_Delete(t *testing.T) {
	users := usersWith(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, users.Delete(context.Background(), "u1"))
}
