// Package app provides the dependency injection container that assembles the
// OpsPilot services from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/opspilot/platform/internal/config"
	"github.com/opspilot/platform/internal/database"
	"github.com/opspilot/platform/internal/http"
	"github.com/opspilot/platform/internal/metrics"
	outboxRepository "github.com/opspilot/platform/internal/outbox/repository"
	outboxUsecase "github.com/opspilot/platform/internal/outbox/usecase"

	authService "github.com/opspilot/platform/internal/auth/service"
	authUseCase "github.com/opspilot/platform/internal/auth/usecase"
	employeeUseCase "github.com/opspilot/platform/internal/employee/usecase"
	workItemUseCase "github.com/opspilot/platform/internal/workitem/usecase"
)

// ErrUnsupportedDriver is returned when DB_DRIVER names neither postgres nor mysql.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// OutboxRepository is the outbox storage shared by the writers, the worker and
// the clean-outbox command.
type OutboxRepository interface {
	outboxUsecase.OutboxEventRepository
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Container holds all application dependencies. Components are created on
// first access and cached; a failed initialization is cached as well and
// returned on every later call.
type Container struct {
	config *config.Config

	logger    *slog.Logger
	db        *sql.DB
	txManager database.TxManager

	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	employeeRepo employeeUseCase.EmployeeRepository
	workItemRepo workItemUseCase.WorkItemRepository
	outboxRepo   OutboxRepository

	secretService authService.SecretService
	tokenService  authService.TokenService

	authUseCase     authUseCase.AuthUseCase
	employeeUseCase employeeUseCase.UseCase
	workItemUseCase workItemUseCase.UseCase
	outboxUseCase   *outboxUsecase.OutboxUseCase

	handlers      *http.Handlers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	employeeRepoInit    sync.Once
	workItemRepoInit    sync.Once
	outboxRepoInit      sync.Once
	secretServiceInit   sync.Once
	tokenServiceInit    sync.Once
	authUseCaseInit     sync.Once
	employeeUseCaseInit sync.Once
	workItemUseCaseInit sync.Once
	outboxUseCaseInit   sync.Once
	handlersInit        sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a container for cfg. Nothing is connected until a
// component is requested.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// resolve runs init exactly once under key and replays its error afterwards.
func (c *Container) resolve(once *sync.Once, key string, init func() error) error {
	once.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[key] = err
			c.mu.Unlock()
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[key]
}

// Logger returns the JSON logger configured from LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection pool.
func (c *Container) DB() (*sql.DB, error) {
	err := c.resolve(&c.dbInit, "db", func() error {
		db, err := c.initDB()
		c.db = db
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager bound to DB.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.resolve(&c.txManagerInit, "txManager", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.resolve(&c.metricsProviderInit, "metricsProvider", func() error {
		if !c.config.MetricsEnabled {
			return nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		c.metricsProvider = provider
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the use case recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.resolve(&c.businessMetricsInit, "businessMetrics", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		c.businessMetrics = businessMetrics
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// OutboxRepository returns the outbox repository for the configured driver.
func (c *Container) OutboxRepository() (OutboxRepository, error) {
	err := c.resolve(&c.outboxRepoInit, "outboxRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for outbox repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverPostgres:
			c.outboxRepo = outboxRepository.NewPostgreSQLOutboxEventRepository(db)
		case database.DriverMySQL:
			c.outboxRepo = outboxRepository.NewMySQLOutboxEventRepository(db)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedDriver, c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.outboxRepo, nil
}

// OutboxUseCase returns the worker that drains the outbox.
func (c *Container) OutboxUseCase() (*outboxUsecase.OutboxUseCase, error) {
	err := c.resolve(&c.outboxUseCaseInit, "outboxUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
		}

		logger := c.Logger()
		c.outboxUseCase = outboxUsecase.NewOutboxUseCase(
			outboxUsecase.Config{
				Interval:   c.config.WorkerInterval,
				BatchSize:  c.config.WorkerBatchSize,
				MaxRetries: c.config.WorkerMaxRetries,
			},
			txManager,
			outboxRepo,
			outboxUsecase.NewDefaultEventProcessor(logger),
			businessMetrics,
			logger,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.outboxUseCase, nil
}

// HTTPServer returns the API server with its router built. ctx bounds the
// background work started by the router and is only used on the first call.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	err := c.resolve(&c.httpServerInit, "httpServer", func() error {
		server, err := c.initHTTPServer(ctx)
		c.httpServer = server
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the /metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.resolve(&c.metricsServerInit, "metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
		}
		if provider == nil {
			return nil
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown stops the servers, flushes metrics and closes the database.
// Components that were never initialized are skipped.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *Container) initLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(c.config.LogLevel),
	})
	return slog.New(handler)
}

// parseLogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Container) initDB() (*sql.DB, error) {
	switch c.config.DBDriver {
	case database.DriverPostgres, database.DriverMySQL:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, c.config.DBDriver)
	}

	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	authenticator, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}
	handlers, err := c.Handlers()
	if err != nil {
		return nil, fmt.Errorf("failed to get handlers for http server: %w", err)
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, authenticator, *handlers, provider)
	return server, nil
}
