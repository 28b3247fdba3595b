// Package mocks provides testify mocks for the auth service interfaces.
package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
)

// MockSecretService is a mock implementation of service.SecretService.
type MockSecretService struct {
	mock.Mock
}

func (m *MockSecretService) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

func (m *MockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}

func (m *MockSecretService) CompareDummy(plainSecret string) {
	m.Called(plainSecret)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(
	subject string,
	roles []authDomain.Role,
	now time.Time,
) (*authDomain.IssuedToken, error) {
	args := m.Called(subject, roles, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedToken), args.Error(1)
}

func (m *MockTokenService) Verify(token string, now time.Time) (*authDomain.Claims, error) {
	args := m.Called(token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Claims), args.Error(1)
}

func (m *MockTokenService) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
