package app

import (
	"context"
	"fmt"
	"time"

	authService "github.com/opspilot/platform/internal/auth/service"
	authUseCase "github.com/opspilot/platform/internal/auth/usecase"
)

// keeperTimeout bounds the KMS call that decrypts the signing secret.
const keeperTimeout = 10 * time.Second

// SecretService returns the password hashing service.
func (c *Container) SecretService() authService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authService.NewSecretService()
	})
	return c.secretService
}

// TokenService returns the HS256 token codec. The signing secret is decrypted
// through JWT_SECRET_KEEPER_URI when one is configured.
func (c *Container) TokenService() (authService.TokenService, error) {
	err := c.resolve(&c.tokenServiceInit, "tokenService", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), keeperTimeout)
		defer cancel()

		key, err := authService.LoadSigningKey(ctx, c.config.JWTSecret, c.config.JWTSecretKeeperURI)
		if err != nil {
			return fmt.Errorf("failed to load signing key: %w", err)
		}

		tokenService, err := authService.NewTokenService(key, c.config.AuthTokenExpiration, c.Logger())
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}
		c.tokenService = tokenService
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenService, nil
}

// AuthUseCase returns the login and principal resolution use case. It is also
// the authenticator used by the HTTP middleware.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	err := c.resolve(&c.authUseCaseInit, "authUseCase", func() error {
		employeeRepo, err := c.EmployeeRepository()
		if err != nil {
			return fmt.Errorf("failed to get employee repository for auth use case: %w", err)
		}
		tokenService, err := c.TokenService()
		if err != nil {
			return fmt.Errorf("failed to get token service for auth use case: %w", err)
		}

		useCase := authUseCase.NewAuthUseCase(employeeRepo, c.SecretService(), tokenService, c.Logger())
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for auth use case: %w", err)
			}
			useCase = authUseCase.NewAuthUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.authUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.authUseCase, nil
}
