package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeDuplicateEmail marks signup attempts against a taken email
	TextCodeDuplicateEmail = "DUPLICATE_EMAIL"
	// TextCodeInvalidCredentials is shared by unknown-email and bad-password logins
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// TextCodeMissingToken marks requests with no bearer token
	TextCodeMissingToken = "MISSING_TOKEN"
	// TextCodeMissingRefreshToken marks refresh calls with no cookie
	TextCodeMissingRefreshToken = "MISSING_REFRESH_TOKEN"
	// TextCodeRevokedToken marks refresh tokens absent from the store
	TextCodeRevokedToken = "REVOKED_TOKEN"
	// TextCodeTokenExpired marks cryptographically expired tokens
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed covers bad signatures and unparseable tokens
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeUserNotFound marks lookups for absent users
	TextCodeUserNotFound = "USER_NOT_FOUND"
	// TextCodeForbidden marks role mismatches
	TextCodeForbidden = "FORBIDDEN"
)

// ErrDuplicateEmail is returned when signing up with an email that already exists.
var ErrDuplicateEmail = goerrors.New("user already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials is returned for unknown emails and for password
// mismatches alike, so callers cannot enumerate registered accounts.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingToken is returned when a protected route gets no bearer token.
var ErrMissingToken = goerrors.New("access token required", goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingRefreshToken is returned when the refresh cookie is absent.
var ErrMissingRefreshToken = goerrors.New("refresh token is required", goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingRefreshToken).
	WithCode(goerrors.CodeForbidden)

// ErrRevokedToken is returned when a refresh token is cryptographically
// fine but no longer present in the store.
var ErrRevokedToken = goerrors.New("invalid refresh token", goerrors.CategoryAuth).
	WithTextCode(TextCodeRevokedToken).
	WithCode(goerrors.CodeForbidden)

// ErrTokenExpired is returned for tokens past their expiry.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeForbidden)

// ErrTokenMalformed is returned for bad signatures and undecodable tokens.
var ErrTokenMalformed = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeForbidden)

// ErrUserNotFound is returned when a user lookup comes back empty.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrForbidden is returned when the caller's role does not satisfy the route.
var ErrForbidden = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("hashed password mismatch", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}
