// Package service provides the cryptographic primitives behind OpsPilot authentication:
// the HS256 token codec and one-way password hashing.
package service

import (
	"time"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
)

// SecretService hashes and verifies employee passwords.
type SecretService interface {
	// HashSecret hashes a plain text password for storage.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret.
	// The comparison is case-sensitive and constant-time within a hash scheme.
	CompareSecret(plainSecret string, hashedSecret string) bool

	// CompareDummy burns the same work as a real comparison against a throwaway
	// hash. It is used when no account exists so response timing stays uniform.
	CompareDummy(plainSecret string)
}

// TokenService issues and verifies signed bearer tokens. Implementations are
// immutable after construction and safe for concurrent use.
type TokenService interface {
	// Issue signs a token for subject carrying roles. The issue time is now
	// truncated to whole seconds and the expiry is issue time plus TTL(), so
	// the token may expire up to one second before now plus TTL().
	Issue(subject string, roles []authDomain.Role, now time.Time) (*authDomain.IssuedToken, error)

	// Verify checks the signature and expiry of token at instant now and returns
	// its claims. Every failure wraps authDomain.ErrInvalidToken.
	Verify(token string, now time.Time) (*authDomain.Claims, error)

	// TTL is the lifetime of issued tokens.
	TTL() time.Duration
}
