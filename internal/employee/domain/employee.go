// Package domain defines the employee entity, the identity behind every login.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/errors"
)

// Employee is a person with access to the platform. Each employee holds exactly one role.
type Employee struct {
	ID        uuid.UUID
	Email     string
	Password  string
	FullName  string
	Role      authDomain.Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal returns the authorization view of the employee.
func (e *Employee) Principal() *authDomain.Principal {
	return &authDomain.Principal{
		Subject: e.Email,
		Roles:   []authDomain.Role{e.Role},
	}
}

// NormalizeEmail returns the canonical, case-insensitive form of an email
// address. It is applied on every write and every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Outbox event types emitted by the employee use case.
const (
	EventEmployeeRegistered        = "employee.registered"
	EventEmployeeActivationChanged = "employee.activation_changed"
)

// Domain-specific errors for employee operations.
var (
	// ErrEmployeeNotFound indicates the requested employee does not exist.
	ErrEmployeeNotFound = errors.Wrap(errors.ErrNotFound, "employee not found")

	// ErrEmailAlreadyRegistered indicates another employee already uses the email.
	ErrEmailAlreadyRegistered = errors.Wrap(errors.ErrConflict, "email already registered")
)
