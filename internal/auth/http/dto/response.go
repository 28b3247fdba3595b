package dto

import (
	"time"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
)

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string    `json:"token"` //nolint:gosec // returned to the authenticated caller
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
}

// MapLoginOutputToResponse converts a login output to an API response.
func MapLoginOutputToResponse(output *authDomain.LoginOutput) LoginResponse {
	return LoginResponse{
		Token:     output.Token,
		Type:      output.TokenType,
		ExpiresAt: output.ExpiresAt,
		Email:     output.Email,
		FullName:  output.FullName,
		Role:      output.Role.String(),
	}
}

// PrincipalResponse describes the caller of GET /api/me.
type PrincipalResponse struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Authorities []string `json:"authorities"`
}

// MapPrincipalToResponse converts a principal to an API response.
func MapPrincipalToResponse(principal *authDomain.Principal) PrincipalResponse {
	return PrincipalResponse{
		Email:       principal.Subject,
		Role:        principal.PrimaryRole().String(),
		Authorities: principal.Authorities(),
	}
}
