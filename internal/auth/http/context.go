// Package http provides the gin middleware and handlers for authentication and authorization.
package http

import (
	"context"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
)

// principalKey is a context key type for storing the authenticated principal.
type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context.
// This is called by the authentication middleware after successful token verification.
func WithPrincipal(ctx context.Context, principal *authDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns (principal, true) if one is present, or (nil, false) for an anonymous request.
func GetPrincipal(ctx context.Context) (*authDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*authDomain.Principal)
	return principal, ok && principal != nil
}
