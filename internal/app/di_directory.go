package app

import (
	"fmt"

	authHTTP "github.com/opspilot/platform/internal/auth/http"
	"github.com/opspilot/platform/internal/database"
	employeeHTTP "github.com/opspilot/platform/internal/employee/http"
	employeeRepository "github.com/opspilot/platform/internal/employee/repository"
	employeeUseCase "github.com/opspilot/platform/internal/employee/usecase"
	"github.com/opspilot/platform/internal/http"
	workItemHTTP "github.com/opspilot/platform/internal/workitem/http"
	workItemRepository "github.com/opspilot/platform/internal/workitem/repository"
	workItemUseCase "github.com/opspilot/platform/internal/workitem/usecase"
)

// EmployeeRepository returns the employee repository for the configured driver.
// It doubles as the identity store of the auth use case.
func (c *Container) EmployeeRepository() (employeeUseCase.EmployeeRepository, error) {
	err := c.resolve(&c.employeeRepoInit, "employeeRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for employee repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverPostgres:
			c.employeeRepo = employeeRepository.NewPostgreSQLEmployeeRepository(db)
		case database.DriverMySQL:
			c.employeeRepo = employeeRepository.NewMySQLEmployeeRepository(db)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedDriver, c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.employeeRepo, nil
}

// WorkItemRepository returns the work item repository for the configured driver.
func (c *Container) WorkItemRepository() (workItemUseCase.WorkItemRepository, error) {
	err := c.resolve(&c.workItemRepoInit, "workItemRepo", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for work item repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverPostgres:
			c.workItemRepo = workItemRepository.NewPostgreSQLWorkItemRepository(db)
		case database.DriverMySQL:
			c.workItemRepo = workItemRepository.NewMySQLWorkItemRepository(db)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedDriver, c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.workItemRepo, nil
}

// EmployeeUseCase returns the employee directory use case.
func (c *Container) EmployeeUseCase() (employeeUseCase.UseCase, error) {
	err := c.resolve(&c.employeeUseCaseInit, "employeeUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for employee use case: %w", err)
		}
		employeeRepo, err := c.EmployeeRepository()
		if err != nil {
			return fmt.Errorf("failed to get employee repository for employee use case: %w", err)
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return fmt.Errorf("failed to get outbox repository for employee use case: %w", err)
		}

		useCase := employeeUseCase.NewEmployeeUseCase(txManager, employeeRepo, outboxRepo, c.SecretService())
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for employee use case: %w", err)
			}
			useCase = employeeUseCase.NewEmployeeUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.employeeUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.employeeUseCase, nil
}

// WorkItemUseCase returns the work item use case.
func (c *Container) WorkItemUseCase() (workItemUseCase.UseCase, error) {
	err := c.resolve(&c.workItemUseCaseInit, "workItemUseCase", func() error {
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for work item use case: %w", err)
		}
		workItemRepo, err := c.WorkItemRepository()
		if err != nil {
			return fmt.Errorf("failed to get work item repository for work item use case: %w", err)
		}
		employeeRepo, err := c.EmployeeRepository()
		if err != nil {
			return fmt.Errorf("failed to get employee repository for work item use case: %w", err)
		}
		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return fmt.Errorf("failed to get outbox repository for work item use case: %w", err)
		}

		useCase := workItemUseCase.NewWorkItemUseCase(txManager, workItemRepo, employeeRepo, outboxRepo)
		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for work item use case: %w", err)
			}
			useCase = workItemUseCase.NewWorkItemUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.workItemUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.workItemUseCase, nil
}

// Handlers returns the gin handlers of every API area.
func (c *Container) Handlers() (*http.Handlers, error) {
	err := c.resolve(&c.handlersInit, "handlers", func() error {
		authUC, err := c.AuthUseCase()
		if err != nil {
			return fmt.Errorf("failed to get auth use case for handlers: %w", err)
		}
		employeeUC, err := c.EmployeeUseCase()
		if err != nil {
			return fmt.Errorf("failed to get employee use case for handlers: %w", err)
		}
		workItemUC, err := c.WorkItemUseCase()
		if err != nil {
			return fmt.Errorf("failed to get work item use case for handlers: %w", err)
		}

		logger := c.Logger()
		c.handlers = &http.Handlers{
			Auth:     authHTTP.NewAuthHandler(authUC, employeeUC, logger),
			Employee: employeeHTTP.NewEmployeeHandler(employeeUC, logger),
			WorkItem: workItemHTTP.NewWorkItemHandler(workItemUC, logger),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.handlers, nil
}
