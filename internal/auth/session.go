package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
)

// TokenPair is the result of a successful login. Refresh responses reuse the
// struct with an empty refresh token: only a new access token is minted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Authenticator orchestrates the signup/login/refresh protocol. All
// collaborators are injected at construction; there is no global state.
type Authenticator struct {
	store    UserStore
	tokens   TokenService
	logger   *zap.Logger
	hashCost int
}

// AuthenticatorOption configures optional Authenticator behavior.
type AuthenticatorOption func(*Authenticator)

// WithHashCost overrides the bcrypt work factor used at signup.
func WithHashCost(cost int) AuthenticatorOption {
	return func(a *Authenticator) {
		if cost > 0 {
			a.hashCost = cost
		}
	}
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, tokens TokenService, logger *zap.Logger, opts ...AuthenticatorOption) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Authenticator{
		store:    store,
		tokens:   tokens,
		logger:   logger,
		hashCost: DefaultHashCost,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// SignupInput is the signup payload.
type SignupInput struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}

// Validate will run validation rules
func (r SignupInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Role, validation.In(RoleAdmin, RoleStaff, RoleViewer)),
	)
}

// Signup creates a new principal. It fails with a conflict when the email is
// already registered and returns the public projection only; signup does not
// auto-login.
func (a *Authenticator) Signup(ctx context.Context, input SignupInput) (*PublicUser, error) {
	if input.Role == "" {
		input.Role = RoleViewer
	}

	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload").
			WithTextCode(TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	existing, err := a.store.FindByEmail(ctx, input.Email)
	if err != nil && !goerrors.IsNotFound(err) {
		a.logger.Error("signup email lookup failed", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPasswordCost(input.Password, a.hashCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := time.Now().UTC()
	user, err := a.store.Insert(ctx, &User{
		Email:        input.Email,
		Name:         input.Name,
		Role:         input.Role,
		PasswordHash: hash,
		CreatedAt:    &now,
	})
	if err != nil {
		a.logger.Error("signup user insert failed", zap.Error(err))
		return nil, err
	}

	return user.Public(), nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the identical error so accounts cannot be enumerated. The
// last_login update is best effort and never fails the login.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*TokenPair, *PublicUser, error) {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, nil, ErrInvalidCredentials
		}
		a.logger.Error("login email lookup failed", zap.Error(err))
		return nil, nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := a.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	if err := a.store.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		a.logger.Warn("last_login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return pair, user.Public(), nil
}

// Refresh exchanges a valid refresh token for a brand-new access token. The
// claim set must carry the refresh type marker; an access token is never
// accepted here. No new refresh token is minted.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if !claims.IsRefresh() {
		return nil, ErrInvalidRefreshToken
	}

	access, err := a.tokens.IssueAccessToken(claims.UserID(), claims.Email, claims.Role())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken: access,
		ExpiresIn:   int64(a.tokens.AccessTokenTTL().Seconds()),
	}, nil
}

// CurrentUser returns the public projection for an already-authenticated
// subject. The record can be gone even though the token is still valid;
// that yields NotFound.
func (a *Authenticator) CurrentUser(ctx context.Context, subject string) (*PublicUser, error) {
	user, err := a.store.FindByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// ChangePassword verifies the old password before storing a new digest.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OldPassword, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// ChangePassword rotates the subject's password digest. A wrong old password
// yields the same generic credentials error as login.
func (a *Authenticator) ChangePassword(ctx context.Context, subject string, input ChangePasswordInput) error {
	if err := input.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password payload").
			WithTextCode(TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := a.store.FindByID(ctx, subject)
	if err != nil {
		return err
	}

	if err := ComparePasswordAndHash(input.OldPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPasswordCost(input.NewPassword, a.hashCost)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	return a.store.SetPasswordHash(ctx, user.ID, hash)
}

func (a *Authenticator) issuePair(user *User) (*TokenPair, error) {
	access, err := a.tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		a.logger.Error("access token issuance failed", zap.Error(err))
		return nil, err
	}

	refresh, err := a.tokens.IssueRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		a.logger.Error("refresh token issuance failed", zap.Error(err))
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(a.tokens.AccessTokenTTL().Seconds()),
	}, nil
}
