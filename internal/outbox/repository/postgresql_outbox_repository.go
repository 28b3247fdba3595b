package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/opspilot/platform/internal/database"
	apperrors "github.com/opspilot/platform/internal/errors"
	"github.com/opspilot/platform/internal/outbox/domain"
)

// PostgreSQLOutboxEventRepository keeps outbox events in a PostgreSQL table
// with a native UUID id and a JSONB payload.
type PostgreSQLOutboxEventRepository struct {
	db *sql.DB
}

func NewPostgreSQLOutboxEventRepository(db *sql.DB) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{db: db}
}

// Create stores event. It joins the transaction in ctx, so the event commits
// or rolls back with the write that produced it.
func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx,
		`INSERT INTO outbox_events (`+outboxColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.EventType, event.Payload, event.Status, event.Retries,
		event.LastError, event.ProcessedAt, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert outbox event")
	}
	return nil
}

// GetPendingEvents locks up to limit pending events, oldest first. Rows locked
// by another worker are skipped.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events
		 WHERE status = $1
		 ORDER BY created_at ASC
		 LIMIT $2
		 FOR UPDATE SKIP LOCKED`,
		domain.OutboxEventStatusPending, limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query pending outbox events")
	}
	defer rows.Close() //nolint:errcheck

	events := make([]*domain.OutboxEvent, 0, limit)
	for rows.Next() {
		var event domain.OutboxEvent
		if err := scanEvent(rows, &event, &event.ID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}
	return events, nil
}

// Update records the delivery state of event. Type and payload are immutable.
func (r *PostgreSQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	_, err := querier.ExecContext(ctx,
		`UPDATE outbox_events
		 SET status = $1, retries = $2, last_error = $3, processed_at = $4, updated_at = $5
		 WHERE id = $6`,
		event.Status, event.Retries, event.LastError, event.ProcessedAt, time.Now().UTC(), event.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}

// DeleteProcessedBefore removes processed events older than before and returns
// how many rows were deleted. Pending and failed events are kept.
func (r *PostgreSQLOutboxEventRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM outbox_events WHERE status = $1 AND processed_at < $2`,
		domain.OutboxEventStatusProcessed, before,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete processed outbox events")
	}
	return result.RowsAffected()
}
