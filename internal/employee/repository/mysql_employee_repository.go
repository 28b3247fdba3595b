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

// MySQLEmployeeRepository handles employee persistence for MySQL. IDs are stored as BINARY(16).
type MySQLEmployeeRepository struct {
	db *sql.DB
}

// NewMySQLEmployeeRepository creates a new MySQLEmployeeRepository
func NewMySQLEmployeeRepository(db *sql.DB) *MySQLEmployeeRepository {
	return &MySQLEmployeeRepository{
		db: db,
	}
}

// Create inserts a new employee
func (r *MySQLEmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO employees (` + employeeColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	idBytes, err := employee.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes, employee.Email, employee.Password, employee.FullName,
		employee.Role, employee.Active, employee.CreatedAt, employee.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return apperrors.Wrap(err, "failed to create employee")
	}
	return nil
}

// GetByID retrieves an employee by ID
func (r *MySQLEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	employee, err := scanMySQLEmployee(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get employee by id")
	}
	return employee, nil
}

// GetByEmail retrieves an employee by normalized email
func (r *MySQLEmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = ?`

	employee, err := scanMySQLEmployee(querier.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get employee by email")
	}
	return employee, nil
}

// List returns a page of employees, newest first
func (r *MySQLEmployeeRepository) List(ctx context.Context, offset, limit int) ([]*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list employees")
	}
	return collectMySQLEmployees(rows)
}

// Count returns the total number of employees
func (r *MySQLEmployeeRepository) Count(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, "failed to count employees")
	}
	return total, nil
}

// ListByRole returns every employee holding role, ordered by name
func (r *MySQLEmployeeRepository) ListByRole(ctx context.Context, role authDomain.Role) ([]*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees
			  WHERE role = ?
			  ORDER BY full_name ASC`

	rows, err := querier.QueryContext(ctx, query, role)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list employees by role")
	}
	return collectMySQLEmployees(rows)
}

// UpdateActive sets the active flag of an employee
func (r *MySQLEmployeeRepository) UpdateActive(ctx context.Context, employee *domain.Employee) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE employees SET active = ?, updated_at = ? WHERE id = ?`

	idBytes, err := employee.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, query, employee.Active, employee.UpdatedAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update employee")
	}

	// MySQL reports zero affected rows when the value is unchanged, so a
	// missing row is confirmed with a lookup.
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, employee.ID); err != nil {
			return err
		}
	}
	return nil
}

func scanMySQLEmployee(row rowScanner) (*domain.Employee, error) {
	var employee domain.Employee
	var idBytes []byte
	err := row.Scan(
		&idBytes, &employee.Email, &employee.Password, &employee.FullName,
		&employee.Role, &employee.Active, &employee.CreatedAt, &employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := employee.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &employee, nil
}

func collectMySQLEmployees(rows *sql.Rows) ([]*domain.Employee, error) {
	defer rows.Close() //nolint:errcheck

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee, err := scanMySQLEmployee(rows)
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
