package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/opspilot/platform/internal/app"
	"github.com/opspilot/platform/internal/config"
)

// DefaultShutdownTimeout bounds the graceful shutdown of the servers.
const DefaultShutdownTimeout = 30 * time.Second

// Service is a long running server stopped through Shutdown.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Worker is a loop that runs until its context is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}

// RunServer starts the API server, the metrics server when metrics are enabled
// and, with withWorker, the outbox worker in the same process. It blocks until
// SIGINT/SIGTERM or until one of them fails, then stops the rest gracefully.
func RunServer(ctx context.Context, version string, withWorker bool) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("env", cfg.AppEnv),
		slog.Bool("worker", withWorker),
	)
	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	services := []Service{server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		services = append(services, metricsServer)
	}

	var workers []Worker
	if withWorker {
		outboxUseCase, err := container.OutboxUseCase()
		if err != nil {
			return fmt.Errorf("failed to initialize outbox worker: %w", err)
		}
		workers = append(workers, outboxUseCase)
	}

	return Serve(ctx, logger, DefaultShutdownTimeout, services, workers)
}

// Serve runs services and workers in one errgroup. When ctx is cancelled or
// any member fails, every service is shut down within shutdownTimeout and the
// workers are cancelled. A worker stopping because of cancellation is not an error.
func Serve(
	ctx context.Context,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
	services []Service,
	workers []Worker,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, service := range services {
		g.Go(func() error {
			return service.Start(gctx)
		})
	}

	for _, worker := range workers {
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Any("cause", context.Cause(gctx)))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, service := range services {
			if err := service.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
