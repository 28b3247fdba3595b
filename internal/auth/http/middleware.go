package http

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	apperrors "github.com/opspilot/platform/internal/errors"
	"github.com/opspilot/platform/internal/httputil"
)

// Authenticator turns a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authDomain.Principal, error)
}

// bearerPrefix is matched case-insensitively.
const bearerPrefix = "bearer "

// AuthenticationMiddleware resolves the Bearer token of every request into a
// principal stored in the request context.
//
// The middleware never rejects a request. A missing header, a non-Bearer scheme
// or a token that fails verification all leave the request anonymous; the
// authorization middleware decides whether the route needs a principal. The
// specific verification failure (malformed, signature mismatch, expired) is
// logged here and nowhere else.
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(authUseCase, logger))
//	router.Use(AuthorizationMiddleware(policy, logger))
func AuthenticationMiddleware(authenticator Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			c.Next()
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		principal, err := authenticator.Authenticate(ctx, token)
		if err != nil {
			// Expiry is routine; anything else may be tampering.
			level := slog.LevelWarn
			if apperrors.Is(err, authDomain.ErrExpiredToken) {
				level = slog.LevelDebug
			}
			logger.Log(ctx, level, "bearer token rejected",
				slog.String("path", c.Request.URL.Path),
				slog.String("reason", tokenFailureKind(err)),
			)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(ctx, principal))
		c.Next()
	}
}

// AuthorizationMiddleware evaluates every request against the policy and aborts
// denied requests with 401 (no principal) or 403 (insufficient role). The 403
// body never names the role that was required.
func AuthorizationMiddleware(policy *authDomain.Policy, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := GetPrincipal(c.Request.Context())
		path := c.Request.URL.Path

		decision := policy.Decide(c.Request.Method, path, principal)
		if decision.Allowed {
			c.Next()
			return
		}

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("rule", decision.Rule),
		}
		if principal != nil {
			attrs = append(attrs,
				slog.String("subject", principal.Subject),
				slog.Any("roles", principal.Authorities()),
			)
		}
		logger.Debug("request denied", attrs...)

		httputil.HandleErrorGin(c, decision.Err, nil)
		c.Abort()
	}
}

// tokenFailureKind names the verification failure for logs.
func tokenFailureKind(err error) string {
	switch {
	case apperrors.Is(err, authDomain.ErrExpiredToken):
		return "expired"
	case apperrors.Is(err, authDomain.ErrSignatureMismatch):
		return "signature_mismatch"
	case apperrors.Is(err, authDomain.ErrMalformedToken):
		return "malformed"
	default:
		return "invalid"
	}
}
