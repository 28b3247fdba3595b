package domain

import (
	"time"
)

// TokenTypeBearer is the scheme returned to clients alongside every token.
const TokenTypeBearer = "Bearer"

// Claims is the verified content of a bearer token.
type Claims struct {
	Subject   string
	Roles     []Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a freshly signed bearer token.
type IssuedToken struct {
	Token     string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// LoginInput holds the credentials presented to the login endpoint.
type LoginInput struct {
	Email    string
	Password string //nolint:gosec // plaintext only in transit, never stored
}

// LoginOutput is returned on a successful login.
type LoginOutput struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	Email     string
	FullName  string
	Role      Role
}
