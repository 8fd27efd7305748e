package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenService issues and validates signed, expiring claim sets.
type TokenService interface {
	IssueAccessToken(userID, email string, role UserRole) (string, error)
	IssueRefreshToken(userID, email string, role UserRole) (string, error)
	Issue(claims *TokenClaims, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
	DecodeUnsafe(token string) (*TokenClaims, error)
	AccessTokenTTL() time.Duration
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService instance. Only HMAC methods are
// accepted; tokens presented with any other alg are rejected at verification.
func NewTokenService(signingKey []byte, methodName string, accessTTL, refreshTTL time.Duration, logger *zap.Logger) (*TokenServiceImpl, error) {
	if len(signingKey) == 0 {
		return nil, goerrors.New("signing key must not be empty", goerrors.CategoryBadInput)
	}

	method := jwt.GetSigningMethod(methodName)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, goerrors.New("signing method must be HMAC based", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"method": methodName})
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenServiceImpl{
		signingKey: signingKey,
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (ts *TokenServiceImpl) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}

// IssueAccessToken signs a short-lived access token carrying {sub, email, role}.
func (ts *TokenServiceImpl) IssueAccessToken(userID, email string, role UserRole) (string, error) {
	return ts.Issue(&TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Email:            email,
		UserRole:         role,
	}, ts.accessTTL)
}

// IssueRefreshToken signs a longer-lived token with the refresh type marker.
// The marker is what keeps refresh tokens out of the access-token paths.
func (ts *TokenServiceImpl) IssueRefreshToken(userID, email string, role UserRole) (string, error) {
	return ts.Issue(&TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Email:            email,
		UserRole:         role,
		TokenType:        TokenTypeRefresh,
	}, ts.refreshTTL)
}

// Issue signs the given claims with expiration now+ttl. The claim set is not
// stored anywhere; validity is re-derived from the signed bytes at Verify time.
func (ts *TokenServiceImpl) Issue(claims *TokenClaims, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	now := time.Now()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.RegisteredClaims.ID == "" {
		claims.RegisteredClaims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify parses and validates a token string, returning the decoded claims.
// Malformed structure, signature mismatch, and expiry all collapse into
// ErrInvalidToken; callers branch on a single expected failure.
func (ts *TokenServiceImpl) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Warn("token verify encountered unexpected signing method", zap.Any("alg", t.Header["alg"]))
			return nil, ErrInvalidToken
		}
		return ts.signingKey, nil
	})

	if err != nil {
		ts.logger.Debug("token verification failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// DecodeUnsafe decodes claims WITHOUT verifying the signature. It exists for
// diagnostics such as expiration inspection and must never feed an
// authorization decision; use Verify for that.
func (ts *TokenServiceImpl) DecodeUnsafe(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiration reports when the token expires, without validating it.
func (ts *TokenServiceImpl) Expiration(tokenString string) (time.Time, error) {
	claims, err := ts.DecodeUnsafe(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expires(), nil
}
