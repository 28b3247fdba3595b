// Package repository stores outbox events in PostgreSQL or MySQL.
package repository

import (
	"github.com/opspilot/platform/internal/outbox/domain"
)

// outboxColumns is the column order shared by every SELECT and by scanEvent.
const outboxColumns = `id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one row in outboxColumns order into event. The id column
// goes to id, since each driver stores UUIDs differently.
func scanEvent(row rowScanner, event *domain.OutboxEvent, id any) error {
	return row.Scan(id, &event.EventType, &event.Payload, &event.Status,
		&event.Retries, &event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt)
}
