package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	authService "github.com/opspilot/platform/internal/auth/service"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
)

// Option configures an AuthUseCase.
type Option func(*authUseCase)

// WithClock replaces time.Now as the source of issue and verification times.
func WithClock(now func() time.Time) Option {
	return func(uc *authUseCase) {
		uc.now = now
	}
}

// authUseCase implements AuthUseCase.
type authUseCase struct {
	identities    IdentityStore
	secretService authService.SecretService
	tokenService  authService.TokenService
	logger        *slog.Logger
	now           func() time.Time
}

// NewAuthUseCase creates an AuthUseCase.
func NewAuthUseCase(
	identities IdentityStore,
	secretService authService.SecretService,
	tokenService authService.TokenService,
	logger *slog.Logger,
	opts ...Option,
) AuthUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	uc := &authUseCase{
		identities:    identities,
		secretService: secretService,
		tokenService:  tokenService,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// VerifyCredentials looks the employee up by normalized email and compares the
// password. A hash comparison runs on every path so timing does not reveal
// whether the account exists.
func (a *authUseCase) VerifyCredentials(
	ctx context.Context,
	email, secret string,
) (*employeeDomain.Employee, error) {
	employee, err := a.identities.GetByEmail(ctx, employeeDomain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, employeeDomain.ErrEmployeeNotFound) {
			a.secretService.CompareDummy(secret)
			return nil, authDomain.ErrUnknownIdentity
		}
		return nil, err
	}

	if !a.secretService.CompareSecret(secret, employee.Password) {
		return nil, authDomain.ErrBadSecret
	}

	if !employee.Active {
		return nil, authDomain.ErrInactiveIdentity
	}

	return employee, nil
}

func (a *authUseCase) Login(ctx context.Context, input authDomain.LoginInput) (*authDomain.LoginOutput, error) {
	employee, err := a.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, authDomain.ErrInvalidCredentials) {
			a.logger.WarnContext(ctx, "login failed",
				slog.String("email", employeeDomain.NormalizeEmail(input.Email)),
				slog.String("reason", credentialFailureKind(err)),
			)
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	issued, err := a.tokenService.Issue(employee.Email, []authDomain.Role{employee.Role}, a.now())
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "login succeeded",
		slog.String("email", employee.Email),
		slog.String("role", employee.Role.String()),
	)

	return &authDomain.LoginOutput{
		Token:     issued.Token,
		TokenType: issued.TokenType,
		ExpiresAt: issued.ExpiresAt,
		Email:     employee.Email,
		FullName:  employee.FullName,
		Role:      employee.Role,
	}, nil
}

func (a *authUseCase) Authenticate(_ context.Context, token string) (*authDomain.Principal, error) {
	claims, err := a.tokenService.Verify(token, a.now())
	if err != nil {
		return nil, err
	}

	return &authDomain.Principal{
		Subject: claims.Subject,
		Roles:   claims.Roles,
	}, nil
}

func (a *authUseCase) IssueToken(ctx context.Context, email string) (*authDomain.IssuedToken, error) {
	employee, err := a.identities.GetByEmail(ctx, employeeDomain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !employee.Active {
		return nil, authDomain.ErrInactiveIdentity
	}
	return a.tokenService.Issue(employee.Email, []authDomain.Role{employee.Role}, a.now())
}

// credentialFailureKind names the internal failure for logs.
func credentialFailureKind(err error) string {
	switch {
	case errors.Is(err, authDomain.ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, authDomain.ErrInactiveIdentity):
		return "inactive_identity"
	case errors.Is(err, authDomain.ErrBadSecret):
		return "bad_secret"
	default:
		return "invalid_credentials"
	}
}
