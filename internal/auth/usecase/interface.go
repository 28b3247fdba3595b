// Package usecase implements credential verification and principal resolution.
package usecase

import (
	"context"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
)

// IdentityStore looks up the employee behind a login name.
type IdentityStore interface {
	// GetByEmail returns employeeDomain.ErrEmployeeNotFound when no employee matches.
	GetByEmail(ctx context.Context, email string) (*employeeDomain.Employee, error)
}

// AuthUseCase verifies credentials, issues tokens and turns tokens back into principals.
type AuthUseCase interface {
	// VerifyCredentials checks an email and password pair. Failures wrap
	// authDomain.ErrInvalidCredentials with the specific kind.
	VerifyCredentials(ctx context.Context, email, secret string) (*employeeDomain.Employee, error)

	// Login verifies credentials and issues a bearer token. Every credential
	// failure is returned as the bare authDomain.ErrInvalidCredentials.
	Login(ctx context.Context, input authDomain.LoginInput) (*authDomain.LoginOutput, error)

	// Authenticate verifies token and builds a principal from its claims alone.
	// Storage is never consulted, so role changes and deactivations apply only
	// to tokens issued afterwards.
	Authenticate(ctx context.Context, token string) (*authDomain.Principal, error)

	// IssueToken signs a token for an existing active employee without a password.
	// It backs the operator CLI and is not exposed over HTTP.
	IssueToken(ctx context.Context, email string) (*authDomain.IssuedToken, error)
}
