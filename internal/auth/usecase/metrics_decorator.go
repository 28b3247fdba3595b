package usecase

import (
	"context"
	"time"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
	"github.com/opspilot/platform/internal/metrics"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	a.metrics.RecordOperation(ctx, "auth", operation, status)
	a.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// VerifyCredentials records metrics for credential checks.
func (a *authUseCaseWithMetrics) VerifyCredentials(
	ctx context.Context,
	email, secret string,
) (*employeeDomain.Employee, error) {
	start := time.Now()
	employee, err := a.next.VerifyCredentials(ctx, email, secret)
	a.record(ctx, "auth_verify_credentials", start, err)
	return employee, err
}

// Login records metrics for login attempts.
func (a *authUseCaseWithMetrics) Login(
	ctx context.Context,
	input authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)
	a.record(ctx, "auth_login", start, err)
	return output, err
}

// Authenticate records metrics for bearer token verification.
func (a *authUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := a.next.Authenticate(ctx, token)
	a.record(ctx, "auth_authenticate", start, err)
	return principal, err
}

// IssueToken records metrics for passwordless token issuance.
func (a *authUseCaseWithMetrics) IssueToken(ctx context.Context, email string) (*authDomain.IssuedToken, error) {
	start := time.Now()
	issued, err := a.next.IssueToken(ctx, email)
	a.record(ctx, "auth_issue_token", start, err)
	return issued, err
}
