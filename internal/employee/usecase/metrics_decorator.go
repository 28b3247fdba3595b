package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/employee/domain"
	"github.com/opspilot/platform/internal/metrics"
)

// employeeUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type employeeUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewEmployeeUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewEmployeeUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &employeeUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *employeeUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	e.metrics.RecordOperation(ctx, "employee", operation, status)
	e.metrics.RecordDuration(ctx, "employee", operation, time.Since(start), status)
}

func (e *employeeUseCaseWithMetrics) Register(
	ctx context.Context,
	input RegisterEmployeeInput,
) (*domain.Employee, error) {
	start := time.Now()
	employee, err := e.next.Register(ctx, input)
	e.record(ctx, "employee_register", start, err)
	return employee, err
}

func (e *employeeUseCaseWithMetrics) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	start := time.Now()
	employee, err := e.next.GetByEmail(ctx, email)
	e.record(ctx, "employee_get_by_email", start, err)
	return employee, err
}

func (e *employeeUseCaseWithMetrics) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	start := time.Now()
	employee, err := e.next.GetByID(ctx, id)
	e.record(ctx, "employee_get", start, err)
	return employee, err
}

func (e *employeeUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*domain.Employee, int64, error) {
	start := time.Now()
	employees, total, err := e.next.List(ctx, offset, limit)
	e.record(ctx, "employee_list", start, err)
	return employees, total, err
}

func (e *employeeUseCaseWithMetrics) ListByRole(
	ctx context.Context,
	role authDomain.Role,
) ([]*domain.Employee, error) {
	start := time.Now()
	employees, err := e.next.ListByRole(ctx, role)
	e.record(ctx, "employee_list_by_role", start, err)
	return employees, err
}

func (e *employeeUseCaseWithMetrics) SetActive(
	ctx context.Context,
	id uuid.UUID,
	active bool,
) (*domain.Employee, error) {
	start := time.Now()
	employee, err := e.next.SetActive(ctx, id, active)
	e.record(ctx, "employee_set_active", start, err)
	return employee, err
}
