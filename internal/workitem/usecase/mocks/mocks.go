// Package mocks provides testify mocks for the work item use case.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/workitem/domain"
	"github.com/opspilot/platform/internal/workitem/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

var _ usecase.UseCase = (*MockUseCase)(nil)

func (m *MockUseCase) item(args mock.Arguments) (*domain.WorkItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

func (m *MockUseCase) Create(
	ctx context.Context,
	principal *authDomain.Principal,
	input usecase.CreateWorkItemInput,
) (*domain.WorkItem, error) {
	return m.item(m.Called(ctx, principal, input))
}

func (m *MockUseCase) Assign(ctx context.Context, id, employeeID uuid.UUID) (*domain.WorkItem, error) {
	return m.item(m.Called(ctx, id, employeeID))
}

func (m *MockUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.WorkItem, error) {
	return m.item(m.Called(ctx, id, status))
}

func (m *MockUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input usecase.UpdateWorkItemInput,
) (*domain.WorkItem, error) {
	return m.item(m.Called(ctx, id, input))
}

func (m *MockUseCase) ListMine(ctx context.Context, principal *authDomain.Principal) ([]*domain.WorkItem, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WorkItem), args.Error(1)
}

func (m *MockUseCase) ListMinePage(
	ctx context.Context,
	principal *authDomain.Principal,
	query domain.ListQuery,
) ([]*domain.WorkItem, int64, error) {
	args := m.Called(ctx, principal, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.WorkItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockUseCase) ListAll(ctx context.Context, query domain.ListQuery) ([]*domain.WorkItem, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.WorkItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockUseCase) Dashboard(
	ctx context.Context,
	principal *authDomain.Principal,
) (*domain.DashboardMetrics, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardMetrics), args.Error(1)
}
