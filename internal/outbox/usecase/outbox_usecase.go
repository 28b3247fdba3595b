// Package usecase implements the outbox worker that drains events written by the
// employee and work item use cases.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/opspilot/platform/internal/database"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
	"github.com/opspilot/platform/internal/metrics"
	"github.com/opspilot/platform/internal/outbox/domain"
	workItemDomain "github.com/opspilot/platform/internal/workitem/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor defines the interface for processing different event types
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	metrics        metrics.BusinessMetrics
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase. A nil metrics recorder disables metrics.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		metrics:        businessMetrics,
		logger:         logger,
	}
}

// Start runs ProcessEvents every Interval until ctx is cancelled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("max_retries", uc.config.MaxRetries),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents retrieves and processes one batch of pending events in a transaction.
// A failing event is retried on later batches until MaxRetries, then marked failed.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		uc.logger.Debug("processing events", slog.Int("count", len(events)))

		for _, event := range events {
			start := time.Now()
			processErr := uc.eventProcessor.Process(ctx, event)

			status := "success"
			if processErr != nil {
				status = "error"
				uc.logger.Error("failed to process event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Int("retries", event.Retries),
					slog.Any("error", processErr),
				)

				event.Retries++
				errorMsg := processErr.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.OutboxEventStatusFailed
				}
			} else {
				now := time.Now().UTC()
				event.Status = domain.OutboxEventStatusProcessed
				event.ProcessedAt = &now
			}

			uc.metrics.RecordOperation(ctx, "outbox", event.EventType, status)
			uc.metrics.RecordDuration(ctx, "outbox", event.EventType, time.Since(start), status)

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// EventHandler handles the decoded payload of one event type.
type EventHandler func(ctx context.Context, payload map[string]any) error

// DefaultEventProcessor dispatches events to handlers registered per event type.
// Events without a handler are logged and treated as processed.
type DefaultEventProcessor struct {
	logger   *slog.Logger
	handlers map[string]EventHandler
}

// NewDefaultEventProcessor creates a processor with logging handlers for every
// event type the platform emits.
func NewDefaultEventProcessor(logger *slog.Logger) *DefaultEventProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &DefaultEventProcessor{
		logger:   logger,
		handlers: make(map[string]EventHandler),
	}
	for _, eventType := range []string{
		employeeDomain.EventEmployeeRegistered,
		employeeDomain.EventEmployeeActivationChanged,
		workItemDomain.EventWorkItemCreated,
		workItemDomain.EventWorkItemAssigned,
	} {
		p.Handle(eventType, p.logEvent(eventType))
	}
	return p
}

// Handle registers handler for eventType, replacing any previous one.
func (p *DefaultEventProcessor) Handle(eventType string, handler EventHandler) {
	p.handlers[eventType] = handler
}

// Process decodes the payload and runs the handler registered for its type.
func (p *DefaultEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	var payload map[string]any
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return err
	}

	handler, ok := p.handlers[event.EventType]
	if !ok {
		p.logger.Warn("unknown event type", slog.String("event_type", event.EventType))
		return nil
	}
	return handler(ctx, payload)
}

func (p *DefaultEventProcessor) logEvent(eventType string) EventHandler {
	return func(ctx context.Context, payload map[string]any) error {
		p.logger.InfoContext(ctx, "outbox event",
			slog.String("event_type", eventType),
			slog.Any("payload", payload),
		)
		return nil
	}
}
