// Package usecase implements the employee directory: registration, lookups and activation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/employee/domain"
	outboxDomain "github.com/opspilot/platform/internal/outbox/domain"
)

// RegisterEmployeeInput contains the input data for employee registration
type RegisterEmployeeInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"` //nolint:gosec // plaintext only until hashed
	FullName string          `json:"full_name"`
	Role     authDomain.Role `json:"role"`
}

// UseCase defines the employee directory operations
type UseCase interface {
	// Register creates an employee and writes an employee.registered outbox event
	// in the same transaction. The password is hashed before storage.
	Register(ctx context.Context, input RegisterEmployeeInput) (*domain.Employee, error)

	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)

	// List returns one page of employees, newest first, and the total count.
	List(ctx context.Context, offset, limit int) ([]*domain.Employee, int64, error)

	ListByRole(ctx context.Context, role authDomain.Role) ([]*domain.Employee, error)

	// SetActive changes the active flag. Tokens issued before a deactivation stay
	// valid until they expire; only new logins are refused.
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Employee, error)
}

// EmployeeRepository defines employee persistence operations
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Employee, error)
	Count(ctx context.Context) (int64, error)
	ListByRole(ctx context.Context, role authDomain.Role) ([]*domain.Employee, error)
	UpdateActive(ctx context.Context, employee *domain.Employee) error
}

// OutboxEventRepository stores events for asynchronous processing
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}
