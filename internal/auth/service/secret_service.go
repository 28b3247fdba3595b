package service

import (
	"strings"
	"sync"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/opspilot/platform/internal/errors"
)

// dummySecret is hashed once and compared against when no account matches.
const dummySecret = "opspilot-timing-equalizer"

// secretService hashes new passwords with Argon2id and still verifies bcrypt
// hashes carried over from earlier deployments.
type secretService struct {
	hasher *pwdhash.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewSecretService creates a SecretService using the Interactive Argon2id policy,
// which keeps login latency acceptable for human users.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// Only reachable with an invalid built-in policy.
		panic(err)
	}

	return &secretService{hasher: hasher}
}

// HashSecret hashes a plain text password using Argon2id.
func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashedSecret, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// CompareSecret verifies plainSecret against an Argon2id or bcrypt hash.
func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	if isBcryptHash(hashedSecret) {
		return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(plainSecret)) == nil
	}

	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

func (s *secretService) CompareDummy(plainSecret string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.HashSecret(dummySecret)
	})
	_ = s.CompareSecret(plainSecret, s.dummyHash)
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}
