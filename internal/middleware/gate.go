// Package middleware carries the per-request access gate. Every inbound call
// is either allow-listed (public) or must present a verifiable bearer token
// before it reaches a handler.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/classpulse/dashboard-api/internal/auth"
)

// ClaimsKey is the locals key the gate stores verified claims under.
const ClaimsKey = "claims"

const (
	// TextCodeMissingAuthHeader is returned when no Authorization header is present.
	TextCodeMissingAuthHeader = "MISSING_AUTH_HEADER"
	// TextCodeInvalidAuthHeader is returned for structurally bad headers.
	TextCodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
)

// AllowList is the set of paths that bypass authentication entirely.
type AllowList struct {
	Exact    []string
	Prefixes []string
}

// DefaultAllowList covers the authentication endpoints and the liveness and
// documentation surfaces. Logout is NOT public: it acknowledges an
// authenticated caller even though it changes no server state.
func DefaultAllowList() AllowList {
	return AllowList{
		Exact: []string{
			"/health",
			"/auth/signup",
			"/auth/login",
			"/auth/refresh",
		},
		Prefixes: []string{
			"/docs",
		},
	}
}

// Matches reports whether the path is public.
func (l AllowList) Matches(path string) bool {
	for _, p := range l.Exact {
		if path == p {
			return true
		}
	}
	for _, prefix := range l.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Gate authenticates every non-public request before it reaches a handler.
type Gate struct {
	tokens auth.TokenService
	allow  AllowList
	logger *zap.Logger
}

// NewGate builds the access gate around the token service.
func NewGate(tokens auth.TokenService, allow AllowList, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, allow: allow, logger: logger}
}

// Handler returns the fiber middleware. Rejections surface as rich errors so
// the app-level error handler renders the machine-readable reason; the
// request never reaches a handler.
func (g *Gate) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.allow.Matches(c.Path()) {
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(TextCodeMissingAuthHeader, "missing authorization header")
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(TextCodeInvalidAuthHeader, "invalid authorization header")
		}

		claims, err := g.tokens.Verify(parts[1])
		if err != nil {
			g.logger.Debug("request rejected by access gate", zap.String("path", c.Path()))
			return auth.ErrInvalidToken
		}

		// a refresh token is never a valid access credential
		if claims.IsRefresh() {
			return auth.ErrInvalidToken
		}

		c.Locals(ClaimsKey, claims)
		c.SetUserContext(auth.WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

// ClaimsFromCtx reads the verified claims the gate attached to the request.
func ClaimsFromCtx(c *fiber.Ctx) (*auth.TokenClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*auth.TokenClaims)
	return claims, ok
}

// RequireRole guards a route group with an exact role match. There is no role
// hierarchy; admin does not imply staff.
func RequireRole(role auth.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromCtx(c)
		if !ok {
			return auth.ErrInvalidToken
		}
		if !claims.HasRole(role) {
			return auth.ErrForbidden
		}
		return c.Next()
	}
}

func unauthorized(textCode, message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(textCode).
		WithCode(goerrors.CodeUnauthorized)
}
