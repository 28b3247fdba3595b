package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	employeeUseCase "github.com/opspilot/platform/internal/employee/usecase"
)

// RunSetEmployeeActive activates or deactivates the employee with email.
// Deactivation blocks new logins; tokens already issued stay valid until expiry.
func RunSetEmployeeActive(
	ctx context.Context,
	useCase employeeUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	email string,
	active bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	employee, err := useCase.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find employee: %w", err)
	}

	employee, err = useCase.SetActive(ctx, employee.ID, active)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	logger.Info("employee activation changed",
		slog.String("employee_id", employee.ID.String()),
		slog.Bool("active", employee.Active),
	)

	if format == FormatJSON {
		return writeJSON(writer, map[string]any{
			"id":     employee.ID.String(),
			"email":  employee.Email,
			"active": employee.Active,
		})
	}

	state := "deactivated"
	if employee.Active {
		state = "activated"
	}
	_, err = fmt.Fprintf(writer, "Employee %s %s\n", employee.Email, state)
	return err
}
