package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	employeeUseCase "github.com/opspilot/platform/internal/employee/usecase"
)

// CreateEmployeeInput collects the create-employee flags.
type CreateEmployeeInput struct {
	Email    string
	Password string //nolint:gosec // read from flags or stdin, hashed by the use case
	FullName string
	Role     string
	Format   string
}

type employeeOutput struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RunCreateEmployee registers an employee from the command line. It is the way
// to create the first ADMIN, since the register endpoint only lets anonymous
// callers create VIEWER accounts. An empty password is read from streams.Reader.
func RunCreateEmployee(
	ctx context.Context,
	useCase employeeUseCase.UseCase,
	logger *slog.Logger,
	streams IOTuple,
	input CreateEmployeeInput,
) error {
	if err := validateFormat(input.Format); err != nil {
		return err
	}

	role, err := authDomain.ParseRole(input.Role)
	if err != nil {
		return fmt.Errorf("invalid role %q (valid options: ADMIN, OPERATOR, VIEWER): %w", input.Role, err)
	}

	password := input.Password
	if password == "" {
		password, err = readSecret(streams.Reader, streams.Writer, "Password: ")
		if err != nil {
			return err
		}
	}

	employee, err := useCase.Register(ctx, employeeUseCase.RegisterEmployeeInput{
		Email:    input.Email,
		Password: password,
		FullName: input.FullName,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	logger.Info("employee created",
		slog.String("employee_id", employee.ID.String()),
		slog.String("role", employee.Role.String()),
	)

	if input.Format == FormatJSON {
		return writeJSON(streams.Writer, employeeOutput{
			ID:        employee.ID.String(),
			Email:     employee.Email,
			FullName:  employee.FullName,
			Role:      employee.Role.String(),
			Active:    employee.Active,
			CreatedAt: employee.CreatedAt,
		})
	}

	_, err = fmt.Fprintf(streams.Writer, "Employee created successfully\nID: %s\nEmail: %s\nRole: %s\n",
		employee.ID, employee.Email, employee.Role)
	return err
}
