// Package repository provides data persistence implementations for employee entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/database"
	"github.com/opspilot/platform/internal/employee/domain"
	apperrors "github.com/opspilot/platform/internal/errors"
)

const employeeColumns = `id, email, password, full_name, role, active, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgreSQLEmployeeRepository handles employee persistence for PostgreSQL
type PostgreSQLEmployeeRepository struct {
	db *sql.DB
}

// NewPostgreSQLEmployeeRepository creates a new PostgreSQLEmployeeRepository
func NewPostgreSQLEmployeeRepository(db *sql.DB) *PostgreSQLEmployeeRepository {
	return &PostgreSQLEmployeeRepository{
		db: db,
	}
}

// Create inserts a new employee
func (r *PostgreSQLEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO employees (` + employeeColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query,
		employee.ID, employee.Email, employee.Password, employee.FullName,
		employee.Role, employee.Active, employee.CreatedAt, employee.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create employee")
	}
	return nil
}

// GetByID retrieves an employee by ID
func (r *PostgreSQLEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	employee, err := scanPostgreSQLEmployee(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get employee by id")
	}
	return employee, nil
}

// GetByEmail retrieves an employee by normalized email
func (r *PostgreSQLEmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`

	employee, err := scanPostgreSQLEmployee(querier.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get employee by email")
	}
	return employee, nil
}

// List returns a page of employees, newest first
func (r *PostgreSQLEmployeeRepository) List(ctx context.Context, offset, limit int) ([]*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list employees")
	}
	return collectPostgreSQLEmployees(rows)
}

// Count returns the total number of employees
func (r *PostgreSQLEmployeeRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, "failed to count employees")
	}
	return total, nil
}

// ListByRole returns every employee holding role, ordered by name
func (r *PostgreSQLEmployeeRepository) ListByRole(
	ctx context.Context,
	role authDomain.Role,
) ([]*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees
			  WHERE role = $1
			  ORDER BY full_name ASC`

	rows, err := querier.QueryContext(ctx, query, role)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list employees by role")
	}
	return collectPostgreSQLEmployees(rows)
}

// UpdateActive sets the active flag of an employee
func (r *PostgreSQLEmployeeRepository) UpdateActive(ctx context.Context, employee *domain.Employee) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE employees SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, employee.Active, employee.UpdatedAt, employee.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update employee")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func scanPostgreSQLEmployee(row rowScanner) (*domain.Employee, error) {
	var employee domain.Employee
	err := row.Scan(
		&employee.ID, &employee.Email, &employee.Password, &employee.FullName,
		&employee.Role, &employee.Active, &employee.CreatedAt, &employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func collectPostgreSQLEmployees(rows *sql.Rows) ([]*domain.Employee, error) {
	defer rows.Close() //nolint:errcheck

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee, err := scanPostgreSQLEmployee(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan employee")
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate employees")
	}
	return employees, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
