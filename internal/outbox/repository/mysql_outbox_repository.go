package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/opspilot/platform/internal/database"
	apperrors "github.com/opspilot/platform/internal/errors"
	"github.com/opspilot/platform/internal/outbox/domain"
)

// MySQLOutboxEventRepository keeps outbox events in a MySQL table with a
// BINARY(16) id and a JSON payload.
type MySQLOutboxEventRepository struct {
	db *sql.DB
}

func NewMySQLOutboxEventRepository(db *sql.DB) *MySQLOutboxEventRepository {
	return &MySQLOutboxEventRepository{db: db}
}

// Create stores event inside the transaction carried by ctx, if any.
func (r *MySQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to encode outbox event id")
	}

	_, err = querier.ExecContext(ctx,
		`INSERT INTO outbox_events (`+outboxColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, event.EventType, event.Payload, event.Status, event.Retries,
		event.LastError, event.ProcessedAt, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert outbox event")
	}
	return nil
}

// GetPendingEvents locks up to limit pending events, oldest first. SKIP LOCKED
// needs MySQL 8.0 or later.
func (r *MySQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events
		 WHERE status = ?
		 ORDER BY created_at ASC
		 LIMIT ?
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
		var id []byte
		if err := scanEvent(rows, &event, &id); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}
		if err := event.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode outbox event id")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}
	return events, nil
}

// Update records the delivery state of event.
func (r *MySQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to encode outbox event id")
	}

	_, err = querier.ExecContext(ctx,
		`UPDATE outbox_events
		 SET status = ?, retries = ?, last_error = ?, processed_at = ?, updated_at = ?
		 WHERE id = ?`,
		event.Status, event.Retries, event.LastError, event.ProcessedAt, time.Now().UTC(), id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}

// DeleteProcessedBefore removes processed events older than before.
func (r *MySQLOutboxEventRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx,
		`DELETE FROM outbox_events WHERE status = ? AND processed_at < ?`,
		domain.OutboxEventStatusProcessed, before,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete processed outbox events")
	}
	return result.RowsAffected()
}
