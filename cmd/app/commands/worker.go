package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opspilot/platform/internal/app"
	"github.com/opspilot/platform/internal/config"
)

// RunWorker starts the outbox worker on its own until SIGINT/SIGTERM.
func RunWorker(ctx context.Context) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox worker: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runWorker(ctx, outboxUseCase, logger)
}

func runWorker(ctx context.Context, worker Worker, logger *slog.Logger) error {
	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker stopped: %w", err)
	}
	logger.Info("outbox worker stopped")
	return nil
}
