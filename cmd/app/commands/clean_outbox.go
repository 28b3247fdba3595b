package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// OutboxPurger deletes processed outbox events.
type OutboxPurger interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// RunCleanOutbox deletes processed outbox events older than days. Pending and
// failed events are kept so they can still be inspected.
func RunCleanOutbox(
	ctx context.Context,
	purger OutboxPurger,
	logger *slog.Logger,
	writer io.Writer,
	now time.Time,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	before := now.UTC().AddDate(0, 0, -days)
	count, err := purger.DeleteProcessedBefore(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to clean outbox events: %w", err)
	}

	logger.Info("outbox cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	if format == FormatJSON {
		return writeJSON(writer, map[string]any{
			"count": count,
			"days":  days,
		})
	}

	_, err = fmt.Fprintf(writer, "Successfully deleted %d processed outbox event(s) older than %d day(s)\n", count, days)
	return err
}
