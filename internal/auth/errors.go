package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidCredentials is returned for a failed email+password login
var ErrInvalidCredentials = goerrors.New("Incorrect email or password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrPleaseAuthenticate coalesces every refresh-flow failure; internal
// distinctions are not exposed to the caller
var ErrPleaseAuthenticate = goerrors.New("Please authenticate", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingToken is returned when no bearer token is present
var ErrMissingToken = goerrors.New("missing or malformed authorization header", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MISSING")

// ErrTokenExpired is returned when a token's exp is in the past
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned when signature verification fails
var ErrTokenMalformed = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenWrongType is returned when a valid token carries the wrong
// type tag, e.g. a refresh token presented as an access token
var ErrTokenWrongType = goerrors.New("invalid token type", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_WRONG_TYPE")

// ErrTokenNotFound is returned when no matching persisted token exists
var ErrTokenNotFound = goerrors.New("Not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailNotFound is returned by the reset-password flow for an
// unknown email
var ErrEmailNotFound = goerrors.New("No users found with this email", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailTaken is returned on registration with a duplicate email
var ErrEmailTaken = goerrors.New("Email is already in use", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict)

// ErrInsufficientRole is returned when an authenticated caller lacks
// the capability a route requires
var ErrInsufficientRole = goerrors.New("Unauthorized - Insufficient role", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrPasswordResetFailed coalesces every reset-password failure
var ErrPasswordResetFailed = goerrors.New("Password reset failed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailVerifyFailed coalesces every verify-email failure
var ErrEmailVerifyFailed = goerrors.New("Email verification failed", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the bcrypt mismatch error
var ErrMismatchedHashAndPassword = goerrors.New("hashed password does not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsNotFound reports whether err carries the not-found category
func IsNotFound(err error) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryNotFound
	}
	return false
}
