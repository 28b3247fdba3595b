package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	authService "github.com/opspilot/platform/internal/auth/service"
	authServiceMocks "github.com/opspilot/platform/internal/auth/service/mocks"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
	apperrors "github.com/opspilot/platform/internal/errors"
)

var (
	testSigningKey = []byte("0123456789abcdef0123456789abcdef")
	discardLogger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// memoryIdentityStore is an in-memory IdentityStore keyed by normalized email.
type memoryIdentityStore struct {
	mu        sync.Mutex
	employees map[string]*employeeDomain.Employee
}

func newMemoryIdentityStore() *memoryIdentityStore {
	return &memoryIdentityStore{employees: make(map[string]*employeeDomain.Employee)}
}

func (s *memoryIdentityStore) add(t *testing.T, email, password string, role authDomain.Role, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[email] = &employeeDomain.Employee{
		ID:       uuid.Must(uuid.NewV7()),
		Email:    email,
		Password: string(hash),
		FullName: "Test " + string(role),
		Role:     role,
		Active:   active,
	}
}

func (s *memoryIdentityStore) setActive(email string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[email].Active = active
}

func (s *memoryIdentityStore) setRole(email string, role authDomain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[email].Role = role
}

func (s *memoryIdentityStore) GetByEmail(_ context.Context, email string) (*employeeDomain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	employee, ok := s.employees[email]
	if !ok {
		return nil, employeeDomain.ErrEmployeeNotFound
	}
	copied := *employee
	return &copied, nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newRealAuthUseCase(t *testing.T, store IdentityStore, ttl time.Duration, clock *fakeClock) AuthUseCase {
	t.Helper()
	tokenService, err := authService.NewTokenService(testSigningKey, ttl, discardLogger)
	require.NoError(t, err)
	return NewAuthUseCase(store, authService.NewSecretService(), tokenService, discardLogger, WithClock(clock.Now))
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}

	store := newMemoryIdentityStore()
	store.add(t, "admin@opspilot.io", "Admin#2026", authDomain.RoleAdmin, true)
	store.add(t, "former@opspilot.io", "Former#2026", authDomain.RoleOperator, false)

	uc := newRealAuthUseCase(t, store, 24*time.Hour, clock)

	t.Run("Success", func(t *testing.T) {
		output, err := uc.Login(ctx, authDomain.LoginInput{Email: " Admin@OpsPilot.io ", Password: "Admin#2026"})
		require.NoError(t, err)

		assert.NotEmpty(t, output.Token)
		assert.Equal(t, "Bearer", output.TokenType)
		assert.Equal(t, clock.now.Add(24*time.Hour), output.ExpiresAt)
		assert.Equal(t, "admin@opspilot.io", output.Email)
		assert.Equal(t, authDomain.RoleAdmin, output.Role)

		principal, err := uc.Authenticate(ctx, output.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin@opspilot.io", principal.Subject)
		assert.Equal(t, []authDomain.Role{authDomain.RoleAdmin}, principal.Roles)
	})

	t.Run("IdenticalFailureShape", func(t *testing.T) {
		attempts := map[string]authDomain.LoginInput{
			"wrong_password": {Email: "admin@opspilot.io", Password: "admin#2026"},
			"unknown_email":  {Email: "ghost@opspilot.io", Password: "Admin#2026"},
			"inactive":       {Email: "former@opspilot.io", Password: "Former#2026"},
		}

		for name, input := range attempts {
			output, err := uc.Login(ctx, input)
			assert.Nil(t, output, name)
			assert.Same(t, authDomain.ErrInvalidCredentials, err, name)
			assert.Equal(t, "invalid credentials: unauthorized", err.Error(), name)
		}
	})
}

func TestAuthUseCase_VerifyCredentials_Kinds(t *testing.T) {
	ctx := context.Background()
	store := newMemoryIdentityStore()
	store.add(t, "op@opspilot.io", "Operator#1", authDomain.RoleOperator, true)
	store.add(t, "gone@opspilot.io", "Gone#1234", authDomain.RoleViewer, false)

	uc := newRealAuthUseCase(t, store, time.Hour, &fakeClock{now: time.Now()})

	_, err := uc.VerifyCredentials(ctx, "nobody@opspilot.io", "whatever")
	assert.ErrorIs(t, err, authDomain.ErrUnknownIdentity)

	_, err = uc.VerifyCredentials(ctx, "op@opspilot.io", "operator#1")
	assert.ErrorIs(t, err, authDomain.ErrBadSecret)

	_, err = uc.VerifyCredentials(ctx, "gone@opspilot.io", "Gone#1234")
	assert.ErrorIs(t, err, authDomain.ErrInactiveIdentity)

	employee, err := uc.VerifyCredentials(ctx, "OP@opspilot.io", "Operator#1")
	require.NoError(t, err)
	assert.Equal(t, authDomain.RoleOperator, employee.Role)

	for _, kind := range []error{authDomain.ErrUnknownIdentity, authDomain.ErrBadSecret, authDomain.ErrInactiveIdentity} {
		assert.ErrorIs(t, kind, authDomain.ErrInvalidCredentials)
		assert.True(t, apperrors.Is(kind, apperrors.ErrUnauthorized))
	}
}

func TestAuthUseCase_VerifyCredentials_UnknownEmailRunsDummyCompare(t *testing.T) {
	ctx := context.Background()
	secrets := &authServiceMocks.MockSecretService{}
	tokens := &authServiceMocks.MockTokenService{}
	secrets.On("CompareDummy", "guess").Return().Once()

	uc := NewAuthUseCase(newMemoryIdentityStore(), secrets, tokens, discardLogger)

	_, err := uc.VerifyCredentials(ctx, "ghost@opspilot.io", "guess")
	assert.ErrorIs(t, err, authDomain.ErrUnknownIdentity)
	secrets.AssertExpectations(t)
}

func TestAuthUseCase_VerifyCredentials_StorageError(t *testing.T) {
	ctx := context.Background()
	store := &failingIdentityStore{err: errors.New("connection refused")}
	secrets := &authServiceMocks.MockSecretService{}

	uc := NewAuthUseCase(store, secrets, &authServiceMocks.MockTokenService{}, discardLogger)

	_, err := uc.Login(ctx, authDomain.LoginInput{Email: "a@opspilot.io", Password: "x"})
	assert.EqualError(t, err, "connection refused")
	assert.NotErrorIs(t, err, authDomain.ErrInvalidCredentials)
	secrets.AssertNotCalled(t, "CompareDummy", mock.Anything)
}

type failingIdentityStore struct {
	err error
}

func (s *failingIdentityStore) GetByEmail(context.Context, string) (*employeeDomain.Employee, error) {
	return nil, s.err
}

func TestAuthUseCase_Authenticate_TrustsClaimsAfterLogin(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}

	store := newMemoryIdentityStore()
	store.add(t, "op@opspilot.io", "Operator#1", authDomain.RoleOperator, true)
	uc := newRealAuthUseCase(t, store, time.Hour, clock)

	output, err := uc.Login(ctx, authDomain.LoginInput{Email: "op@opspilot.io", Password: "Operator#1"})
	require.NoError(t, err)

	store.setActive("op@opspilot.io", false)
	store.setRole("op@opspilot.io", authDomain.RoleViewer)
	clock.now = clock.now.Add(30 * time.Minute)

	principal, err := uc.Authenticate(ctx, output.Token)
	require.NoError(t, err)
	assert.Equal(t, []authDomain.Role{authDomain.RoleOperator}, principal.Roles)

	_, err = uc.Login(ctx, authDomain.LoginInput{Email: "op@opspilot.io", Password: "Operator#1"})
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthUseCase_Authenticate_ShortTTLExpires(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}

	store := newMemoryIdentityStore()
	store.add(t, "admin@opspilot.io", "Admin#2026", authDomain.RoleAdmin, true)
	uc := newRealAuthUseCase(t, store, time.Second, clock)

	output, err := uc.Login(ctx, authDomain.LoginInput{Email: "admin@opspilot.io", Password: "Admin#2026"})
	require.NoError(t, err)

	_, err = uc.Authenticate(ctx, output.Token)
	require.NoError(t, err)

	clock.now = clock.now.Add(2 * time.Second)
	_, err = uc.Authenticate(ctx, output.Token)
	assert.ErrorIs(t, err, authDomain.ErrExpiredToken)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestAuthUseCase_IssueToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	store := newMemoryIdentityStore()
	store.add(t, "op@opspilot.io", "Operator#1", authDomain.RoleOperator, true)
	store.add(t, "gone@opspilot.io", "Gone#1234", authDomain.RoleViewer, false)

	tokens := &authServiceMocks.MockTokenService{}
	issued := &authDomain.IssuedToken{Token: "signed", TokenType: "Bearer", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	tokens.On("Issue", "op@opspilot.io", []authDomain.Role{authDomain.RoleOperator}, now).Return(issued, nil).Once()

	uc := NewAuthUseCase(store, &authServiceMocks.MockSecretService{}, tokens, discardLogger,
		WithClock(func() time.Time { return now }))

	got, err := uc.IssueToken(ctx, "Op@OpsPilot.io")
	require.NoError(t, err)
	assert.Equal(t, issued, got)

	_, err = uc.IssueToken(ctx, "gone@opspilot.io")
	assert.ErrorIs(t, err, authDomain.ErrInactiveIdentity)

	_, err = uc.IssueToken(ctx, "ghost@opspilot.io")
	assert.ErrorIs(t, err, employeeDomain.ErrEmployeeNotFound)

	tokens.AssertExpectations(t)
}

func TestCredentialFailureKind(t *testing.T) {
	assert.Equal(t, "unknown_identity", credentialFailureKind(authDomain.ErrUnknownIdentity))
	assert.Equal(t, "inactive_identity", credentialFailureKind(authDomain.ErrInactiveIdentity))
	assert.Equal(t, "bad_secret", credentialFailureKind(authDomain.ErrBadSecret))
	assert.Equal(t, "invalid_credentials", credentialFailureKind(authDomain.ErrInvalidCredentials))
}
