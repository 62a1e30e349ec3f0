package signin

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced in error payloads so clients can branch on
// machine readable failures.
const (
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeIdentityNotVerified = "IDENTITY_NOT_VERIFIED"
	TextCodeIdentityInvalid     = "IDENTITY_VERIFICATION_FAILED"
	TextCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeUserDeactivated     = "USER_DEACTIVATED"
)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail structural or
// signature validation.
var ErrTokenMalformed = errors.New("invalid session token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityVerificationFailed is returned when the identity assertion
// fails signature, audience, issuer, or expiry checks.
var ErrIdentityVerificationFailed = errors.New("identity verification failed", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotVerified is returned when the provider has not verified
// the email on the identity assertion.
var ErrIdentityNotVerified = errors.New("email not verified by identity provider", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityNotVerified).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateEmail is returned when an active record already claims the
// email under a different provider subject.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeConflict)

// ErrUserNotFound is returned when the referenced user record is missing
// or inactive.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrUserDeactivated is returned when authentication resolves to a
// record that has been logically deactivated. Deactivation is terminal
// through the public API.
var ErrUserDeactivated = errors.New("account deactivated", errors.CategoryAuth).
	WithTextCode(TextCodeUserDeactivated).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
