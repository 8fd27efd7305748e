package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidToken is returned for any token the codec rejects. Malformed
	// structure, bad signature, and expiry all collapse to this one code so the
	// response does not reveal which check failed.
	TextCodeInvalidToken = "INVALID_TOKEN"
	// TextCodeInvalidCredentials covers both unknown email and wrong password.
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeInvalidRefreshToken is returned when refresh is attempted with
	// anything other than a valid refresh-class token.
	TextCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	// TextCodeEmailTaken signals a duplicate email at signup.
	TextCodeEmailTaken = "EMAIL_TAKEN"
	// TextCodeUserNotFound signals the principal record no longer exists.
	TextCodeUserNotFound = "USER_NOT_FOUND"
	// TextCodeValidation signals a malformed request payload.
	TextCodeValidation = "VALIDATION_ERROR"
	// TextCodeForbidden signals an authenticated caller with the wrong role.
	TextCodeForbidden = "FORBIDDEN"
)

// ErrInvalidToken is the single outcome for every token verification failure.
var ErrInvalidToken = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so callers cannot enumerate accounts.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidRefreshToken rejects refresh attempts made with an invalid token
// or with an access-class token.
var ErrInvalidRefreshToken = goerrors.New("invalid refresh token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailTaken is returned when signup finds an existing principal for the email.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when a principal record is absent from the datastore.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrForbidden is returned by role guards on an exact-match role failure.
var ErrForbidden = goerrors.New("insufficient role", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the error returned when a plaintext
// password does not match its stored digest.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)
