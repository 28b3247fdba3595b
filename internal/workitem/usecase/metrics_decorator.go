package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/metrics"
	"github.com/opspilot/platform/internal/workitem/domain"
)

// workItemUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type workItemUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewWorkItemUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewWorkItemUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &workItemUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (w *workItemUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	w.metrics.RecordOperation(ctx, "workitem", operation, status)
	w.metrics.RecordDuration(ctx, "workitem", operation, time.Since(start), status)
}

func (w *workItemUseCaseWithMetrics) Create(
	ctx context.Context,
	principal *authDomain.Principal,
	input CreateWorkItemInput,
) (*domain.WorkItem, error) {
	start := time.Now()
	item, err := w.next.Create(ctx, principal, input)
	w.record(ctx, "workitem_create", start, err)
	return item, err
}

func (w *workItemUseCaseWithMetrics) Assign(ctx context.Context, id, employeeID uuid.UUID) (*domain.WorkItem, error) {
	start := time.Now()
	item, err := w.next.Assign(ctx, id, employeeID)
	w.record(ctx, "workitem_assign", start, err)
	return item, err
}

func (w *workItemUseCaseWithMetrics) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) (*domain.WorkItem, error) {
	start := time.Now()
	item, err := w.next.UpdateStatus(ctx, id, status)
	w.record(ctx, "workitem_update_status", start, err)
	return item, err
}

func (w *workItemUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateWorkItemInput,
) (*domain.WorkItem, error) {
	start := time.Now()
	item, err := w.next.Update(ctx, id, input)
	w.record(ctx, "workitem_update", start, err)
	return item, err
}

func (w *workItemUseCaseWithMetrics) ListMine(
	ctx context.Context,
	principal *authDomain.Principal,
) ([]*domain.WorkItem, error) {
	start := time.Now()
	items, err := w.next.ListMine(ctx, principal)
	w.record(ctx, "workitem_list_mine", start, err)
	return items, err
}

func (w *workItemUseCaseWithMetrics) ListMinePage(
	ctx context.Context,
	principal *authDomain.Principal,
	query domain.ListQuery,
) ([]*domain.WorkItem, int64, error) {
	start := time.Now()
	items, total, err := w.next.ListMinePage(ctx, principal, query)
	w.record(ctx, "workitem_list_mine_page", start, err)
	return items, total, err
}

func (w *workItemUseCaseWithMetrics) ListAll(
	ctx context.Context,
	query domain.ListQuery,
) ([]*domain.WorkItem, int64, error) {
	start := time.Now()
	items, total, err := w.next.ListAll(ctx, query)
	w.record(ctx, "workitem_list_all", start, err)
	return items, total, err
}

func (w *workItemUseCaseWithMetrics) Dashboard(
	ctx context.Context,
	principal *authDomain.Principal,
) (*domain.DashboardMetrics, error) {
	start := time.Now()
	dashboard, err := w.next.Dashboard(ctx, principal)
	w.record(ctx, "workitem_dashboard", start, err)
	return dashboard, err
}
