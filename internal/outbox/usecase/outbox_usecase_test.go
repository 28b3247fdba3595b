package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
	"github.com/opspilot/platform/internal/outbox/domain"
	workItemDomain "github.com/opspilot/platform/internal/workitem/domain"
)

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockEventProcessor is a mock implementation of EventProcessor
type MockEventProcessor struct {
	mock.Mock
}

func (m *MockEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var testConfig = Config{
	Interval:   5 * time.Second,
	BatchSize:  10,
	MaxRetries: 3,
}

type outboxFixture struct {
	uc        *OutboxUseCase
	txManager *MockTxManager
	repo      *MockOutboxEventRepository
	processor *MockEventProcessor
	metrics   *mockBusinessMetrics
}

func newOutboxFixture(config Config) *outboxFixture {
	f := &outboxFixture{
		txManager: &MockTxManager{},
		repo:      &MockOutboxEventRepository{},
		processor: &MockEventProcessor{},
		metrics:   &mockBusinessMetrics{},
	}
	f.uc = NewOutboxUseCase(config, f.txManager, f.repo, f.processor, f.metrics, nil)
	return f
}

func (f *outboxFixture) assertExpectations(t *testing.T) {
	f.txManager.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.processor.AssertExpectations(t)
	f.metrics.AssertExpectations(t)
}

func pendingEvent(eventType, payload string, retries int) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   payload,
		Status:    domain.OutboxEventStatusPending,
		Retries:   retries,
	}
}

func TestNewOutboxUseCase(t *testing.T) {
	uc := NewOutboxUseCase(testConfig, &MockTxManager{}, &MockOutboxEventRepository{}, &MockEventProcessor{}, nil, nil)

	require.NotNil(t, uc)
	assert.Equal(t, testConfig, uc.config)
	assert.NotNil(t, uc.metrics)
	assert.NotNil(t, uc.logger)
}

func TestOutboxUseCase_Start_ContextCancellation(t *testing.T) {
	f := newOutboxFixture(Config{Interval: 100 * time.Millisecond, BatchSize: 10, MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.uc.Start(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestOutboxUseCase_Start_ProcessesOnTick(t *testing.T) {
	f := newOutboxFixture(Config{Interval: 10 * time.Millisecond, BatchSize: 5, MaxRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	f.txManager.On("WithTx", mock.Anything, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", mock.Anything, 5).
		Run(func(mock.Arguments) { cancel() }).
		Return([]*domain.OutboxEvent{}, nil)

	err := f.uc.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	f.repo.AssertCalled(t, "GetPendingEvents", mock.Anything, 5)
}

func TestOutboxUseCase_ProcessEvents_Success(t *testing.T) {
	f := newOutboxFixture(testConfig)
	ctx := context.Background()

	events := []*domain.OutboxEvent{
		pendingEvent(employeeDomain.EventEmployeeRegistered, `{"email":"ana@opspilot.io"}`, 0),
		pendingEvent(workItemDomain.EventWorkItemCreated, `{"title":"Rotate certificates"}`, 0),
	}

	f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return(events, nil)
	f.processor.On("Process", ctx, events[0]).Return(nil)
	f.processor.On("Process", ctx, events[1]).Return(nil)
	f.repo.On("Update", ctx, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
		return e.Status == domain.OutboxEventStatusProcessed && e.ProcessedAt != nil
	})).Return(nil).Times(2)
	f.metrics.On("RecordOperation", ctx, "outbox", mock.AnythingOfType("string"), "success").Return().Times(2)
	f.metrics.On("RecordDuration", ctx, "outbox", mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration"), "success").
		Return().Times(2)

	require.NoError(t, f.uc.ProcessEvents(ctx))
	f.assertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_NoEvents(t *testing.T) {
	f := newOutboxFixture(testConfig)
	ctx := context.Background()

	f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return([]*domain.OutboxEvent{}, nil)

	require.NoError(t, f.uc.ProcessEvents(ctx))
	f.assertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_GetPendingError(t *testing.T) {
	f := newOutboxFixture(testConfig)
	ctx := context.Background()

	f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return(nil, errors.New("database error"))

	err := f.uc.ProcessEvents(ctx)
	assert.ErrorContains(t, err, "database error")
	f.assertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_ProcessorError(t *testing.T) {
	f := newOutboxFixture(testConfig)
	ctx := context.Background()

	event := pendingEvent(workItemDomain.EventWorkItemAssigned, `{"work_item_id":"x"}`, 0)

	f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return([]*domain.OutboxEvent{event}, nil)
	f.processor.On("Process", ctx, event).Return(errors.New("processing failed"))
	f.repo.On("Update", ctx, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
		return e.ID == event.ID &&
			e.Retries == 1 &&
			e.Status == domain.OutboxEventStatusPending &&
			e.LastError != nil && *e.LastError == "processing failed"
	})).Return(nil)
	f.metrics.On("RecordOperation", ctx, "outbox", workItemDomain.EventWorkItemAssigned, "error").Return()
	f.metrics.On("RecordDuration", ctx, "outbox", workItemDomain.EventWorkItemAssigned, mock.AnythingOfType("time.Duration"), "error").
		Return()

	require.NoError(t, f.uc.ProcessEvents(ctx))
	f.assertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_MaxRetriesReached(t *testing.T) {
	f := newOutboxFixture(testConfig)
	ctx := context.Background()

	event := pendingEvent(employeeDomain.EventEmployeeActivationChanged, `{"active":false}`, 2)

	f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return([]*domain.OutboxEvent{event}, nil)
	f.processor.On("Process", ctx, event).Return(errors.New("processing failed"))
	f.repo.On("Update", ctx, mock.MatchedBy(func(e *domain.OutboxEvent) bool {
		return e.Retries == 3 && e.Status == domain.OutboxEventStatusFailed
	})).Return(nil)
	f.metrics.On("RecordOperation", ctx, "outbox", mock.Anything, "error").Return()
	f.metrics.On("RecordDuration", ctx, "outbox", mock.Anything, mock.Anything, "error").Return()

	require.NoError(t, f.uc.ProcessEvents(ctx))
	f.assertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_UpdateError(t *testing.T) {
	f := newOutboxFixture(testConfig)
	ctx := context.Background()

	event := pendingEvent(employeeDomain.EventEmployeeRegistered, `{}`, 0)

	f.txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	f.repo.On("GetPendingEvents", ctx, testConfig.BatchSize).Return([]*domain.OutboxEvent{event}, nil)
	f.processor.On("Process", ctx, event).Return(nil)
	f.repo.On("Update", ctx, mock.AnythingOfType("*domain.OutboxEvent")).Return(errors.New("update failed"))
	f.metrics.On("RecordOperation", ctx, "outbox", mock.Anything, "success").Return()
	f.metrics.On("RecordDuration", ctx, "outbox", mock.Anything, mock.Anything, "success").Return()

	err := f.uc.ProcessEvents(ctx)
	assert.ErrorContains(t, err, "update failed")
	f.assertExpectations(t)
}

func TestDefaultEventProcessor_Process(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success_KnownTypes", func(t *testing.T) {
		processor := NewDefaultEventProcessor(logger)
		for _, eventType := range []string{
			employeeDomain.EventEmployeeRegistered,
			employeeDomain.EventEmployeeActivationChanged,
			workItemDomain.EventWorkItemCreated,
			workItemDomain.EventWorkItemAssigned,
		} {
			assert.NoError(t, processor.Process(ctx, pendingEvent(eventType, `{"id":"1"}`, 0)), eventType)
		}
	})

	t.Run("Success_UnknownTypeIsSkipped", func(t *testing.T) {
		processor := NewDefaultEventProcessor(nil)
		assert.NoError(t, processor.Process(ctx, pendingEvent("unknown.event", `{"data":"test"}`, 0)))
	})

	t.Run("Success_CustomHandlerReceivesPayload", func(t *testing.T) {
		processor := NewDefaultEventProcessor(logger)

		var received map[string]any
		processor.Handle(workItemDomain.EventWorkItemAssigned, func(_ context.Context, payload map[string]any) error {
			received = payload
			return nil
		})

		err := processor.Process(ctx, pendingEvent(workItemDomain.EventWorkItemAssigned, `{"assignee":"ops@opspilot.io"}`, 0))
		require.NoError(t, err)
		assert.Equal(t, "ops@opspilot.io", received["assignee"])
	})

	t.Run("Error_HandlerFailure", func(t *testing.T) {
		processor := NewDefaultEventProcessor(logger)
		processor.Handle("custom.event", func(context.Context, map[string]any) error {
			return errors.New("downstream unavailable")
		})

		err := processor.Process(ctx, pendingEvent("custom.event", `{}`, 0))
		assert.ErrorContains(t, err, "downstream unavailable")
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		processor := NewDefaultEventProcessor(logger)
		assert.Error(t, processor.Process(ctx, pendingEvent(employeeDomain.EventEmployeeRegistered, `invalid json`, 0)))
	})
}
