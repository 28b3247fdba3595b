package domain

import (
	"github.com/opspilot/platform/internal/errors"
)

// Token verification errors. Every kind wraps ErrInvalidToken, which wraps
// errors.ErrUnauthorized; only the generic form ever reaches a response body.
var (
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrMalformedToken indicates the token is not three base64url segments or its
	// payload cannot be decoded into the expected claims.
	ErrMalformedToken = errors.Wrap(ErrInvalidToken, "malformed token")

	// ErrSignatureMismatch indicates the signature does not verify under the service key
	// or the token names an algorithm other than HS256.
	ErrSignatureMismatch = errors.Wrap(ErrInvalidToken, "signature mismatch")

	// ErrExpiredToken indicates the verification time is at or after the expiry claim.
	ErrExpiredToken = errors.Wrap(ErrInvalidToken, "expired token")
)

// Credential verification errors. Callers outside the auth use case only ever
// see ErrInvalidCredentials.
var (
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	ErrUnknownIdentity  = errors.Wrap(ErrInvalidCredentials, "unknown identity")
	ErrInactiveIdentity = errors.Wrap(ErrInvalidCredentials, "inactive identity")
	ErrBadSecret        = errors.Wrap(ErrInvalidCredentials, "bad secret")
)

// Authorization errors.
var (
	// ErrAuthenticationRequired is returned when a protected route has no principal.
	ErrAuthenticationRequired = errors.Wrap(errors.ErrUnauthorized, "authentication required")

	// ErrInsufficientRole is returned when the principal lacks the role a route requires.
	ErrInsufficientRole = errors.Wrap(errors.ErrForbidden, "insufficient role")

	// ErrPrivilegedRegistration is returned when a non-admin tries to register an
	// ADMIN or OPERATOR account.
	ErrPrivilegedRegistration = errors.Wrap(errors.ErrForbidden, "privileged role requires an administrator")

	// ErrUnknownRole is returned when a role name is outside the closed set.
	ErrUnknownRole = errors.Wrap(errors.ErrInvalidInput, "unknown role")
)
