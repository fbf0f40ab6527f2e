package accounts

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrMismatchedHashAndPassword is the internal sentinel for a failed
// credential check. It never crosses the boundary as-is.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrNoEmptyString rejects empty plaintext passwords
var ErrNoEmptyString = errors.New("password should not be an empty string")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")

// ErrAuthenticationFailed is the single outcome for every login failure.
// Unknown email, wrong password, and signing faults all render this error
// with this exact message so responses carry no enumeration oracle.
var ErrAuthenticationFailed = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode("AUTHENTICATION_FAILED").
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateEmail is returned when a registration collides with an
// existing profile email.
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode("DUPLICATE_EMAIL").
	WithCode(goerrors.CodeConflict)

// ErrProfileNotFound is returned when a profile lookup comes back empty.
var ErrProfileNotFound = goerrors.New("profile not found", goerrors.CategoryNotFound).
	WithTextCode("PROFILE_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrInvalidActivationToken covers unknown activation tokens. Deliberately
// identical for never-issued and stale tokens.
var ErrInvalidActivationToken = goerrors.New("activation token not recognized", goerrors.CategoryNotFound).
	WithTextCode("INVALID_ACTIVATION_TOKEN").
	WithCode(goerrors.CodeNotFound)

// ErrTokenSigning marks an internal signing fault. Collapsed into
// ErrAuthenticationFailed before it reaches a client.
var ErrTokenSigning = goerrors.New("failed to sign token", goerrors.CategoryInternal).
	WithTextCode("TOKEN_SIGNING_FAILED")

// ErrNotificationDelivery is returned when the activation e-mail could not
// be handed to the transport. The registered profile is never rolled back.
var ErrNotificationDelivery = goerrors.New("activation notification was not delivered", goerrors.CategoryOperation).
	WithTextCode("NOTIFICATION_DELIVERY_FAILED")

// ErrTooManyLoginAttempts enforces the login cool down window
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithTextCode("TOO_MANY_LOGIN_ATTEMPTS").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is surfaced when a presented token is past its expiry
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is surfaced when a presented token cannot be parsed
var ErrTokenMalformed = goerrors.New("authentication token malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == ErrTokenMalformed.TextCode {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsDuplicateConstraintError detects a unique-index violation coming back
// from the store. The text varies per driver and rich errors hide the
// driver message behind their public rendering, so we walk the unwrap
// chain and match each cause against the common postgres and sqlite forms.
func IsDuplicateConstraintError(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		msg := err.Error()
		if strings.Contains(msg, "duplicate key value") ||
			strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "SQLSTATE 23505") {
			return true
		}
	}
	return false
}
