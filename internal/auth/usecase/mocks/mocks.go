// Package mocks provides testify mocks for the auth use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/auth/usecase"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
)

// MockAuthUseCase is a mock implementation of usecase.AuthUseCase.
type MockAuthUseCase struct {
	mock.Mock
}

var _ usecase.AuthUseCase = (*MockAuthUseCase)(nil)

func (m *MockAuthUseCase) VerifyCredentials(
	ctx context.Context,
	email, secret string,
) (*employeeDomain.Employee, error) {
	args := m.Called(ctx, email, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*employeeDomain.Employee), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, input authDomain.LoginInput) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

func (m *MockAuthUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

func (m *MockAuthUseCase) IssueToken(ctx context.Context, email string) (*authDomain.IssuedToken, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedToken), args.Error(1)
}
