// Package usecase implements work item tracking: creation, assignment, status
// changes, listings and the dashboard.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
	outboxDomain "github.com/opspilot/platform/internal/outbox/domain"
	"github.com/opspilot/platform/internal/workitem/domain"
)

// CreateWorkItemInput contains the input data for creating a work item. The
// creator is always the authenticated principal.
type CreateWorkItemInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// UpdateWorkItemInput carries a partial update. Nil fields are left unchanged.
type UpdateWorkItemInput struct {
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	Status       *domain.Status `json:"status"`
	AssignedToID *uuid.UUID     `json:"assigned_to_id"`
}

// UseCase defines the work item operations
type UseCase interface {
	// Create stores a new OPEN item created by the principal. A non-nil assignee
	// must be an existing employee.
	Create(ctx context.Context, principal *authDomain.Principal, input CreateWorkItemInput) (*domain.WorkItem, error)

	// Assign hands the item to an employee; an OPEN item moves to IN_PROGRESS.
	Assign(ctx context.Context, id, employeeID uuid.UUID) (*domain.WorkItem, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.WorkItem, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateWorkItemInput) (*domain.WorkItem, error)

	// ListMine returns every item created by or assigned to the principal.
	ListMine(ctx context.Context, principal *authDomain.Principal) ([]*domain.WorkItem, error)

	ListMinePage(
		ctx context.Context,
		principal *authDomain.Principal,
		query domain.ListQuery,
	) ([]*domain.WorkItem, int64, error)

	ListAll(ctx context.Context, query domain.ListQuery) ([]*domain.WorkItem, int64, error)

	// Dashboard aggregates item counts per status plus the principal's own totals.
	Dashboard(ctx context.Context, principal *authDomain.Principal) (*domain.DashboardMetrics, error)
}

// WorkItemRepository defines work item persistence operations
type WorkItemRepository interface {
	Create(ctx context.Context, item *domain.WorkItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error)
	Update(ctx context.Context, item *domain.WorkItem) error
	ListForEmployee(ctx context.Context, employeeID uuid.UUID) ([]*domain.WorkItem, error)
	ListForEmployeePage(ctx context.Context, employeeID uuid.UUID, query domain.ListQuery) ([]*domain.WorkItem, error)
	CountForEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error)
	List(ctx context.Context, query domain.ListQuery) ([]*domain.WorkItem, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
	CountAssignedTo(ctx context.Context, employeeID uuid.UUID) (int64, error)
	CountCreatedBy(ctx context.Context, employeeID uuid.UUID) (int64, error)
}

// EmployeeDirectory resolves the employees a work item refers to
type EmployeeDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*employeeDomain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*employeeDomain.Employee, error)
}

// OutboxEventRepository stores events for asynchronous processing
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}
