// Package repository provides data persistence implementations for work items.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/opspilot/platform/internal/database"
	apperrors "github.com/opspilot/platform/internal/errors"
	"github.com/opspilot/platform/internal/workitem/domain"
)

// workItemSelect reads a work item together with the names of its creator and assignee.
const workItemSelect = `SELECT w.id, w.title, w.description, w.status,
			  w.created_by_id, c.full_name, w.assigned_to_id, COALESCE(a.full_name, ''),
			  w.created_at, w.updated_at
			  FROM work_items w
			  JOIN employees c ON c.id = w.created_by_id
			  LEFT JOIN employees a ON a.id = w.assigned_to_id`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// PostgreSQLWorkItemRepository handles work item persistence for PostgreSQL
type PostgreSQLWorkItemRepository struct {
	db *sql.DB
}

// NewPostgreSQLWorkItemRepository creates a new PostgreSQLWorkItemRepository
func NewPostgreSQLWorkItemRepository(db *sql.DB) *PostgreSQLWorkItemRepository {
	return &PostgreSQLWorkItemRepository{
		db: db,
	}
}

// Create inserts a new work item
func (r *PostgreSQLWorkItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO work_items
			  (id, title, description, status, created_by_id, assigned_to_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(ctx, query,
		item.ID, item.Title, item.Description, item.Status,
		item.CreatedByID, nullableID(item.AssignedToID), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create work item")
	}
	return nil
}

// GetByID retrieves a work item by ID
func (r *PostgreSQLWorkItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + ` WHERE w.id = $1`

	item, err := scanPostgreSQLWorkItem(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get work item by id")
	}
	return item, nil
}

// Update writes the mutable fields of a work item
func (r *PostgreSQLWorkItemRepository) Update(ctx context.Context, item *domain.WorkItem) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE work_items
			  SET title = $1, description = $2, status = $3, assigned_to_id = $4, updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(ctx, query,
		item.Title, item.Description, item.Status, nullableID(item.AssignedToID), item.UpdatedAt, item.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update work item")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return domain.ErrWorkItemNotFound
	}
	return nil
}

// ListForEmployee returns every item created by or assigned to the employee, newest first
func (r *PostgreSQLWorkItemRepository) ListForEmployee(
	ctx context.Context,
	employeeID uuid.UUID,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + `
			  WHERE w.created_by_id = $1 OR w.assigned_to_id = $1
			  ORDER BY w.created_at DESC, w.id DESC`

	rows, err := querier.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items for employee")
	}
	return collectPostgreSQLWorkItems(rows)
}

// ListForEmployeePage returns one page of the items created by or assigned to the employee
func (r *PostgreSQLWorkItemRepository) ListForEmployeePage(
	ctx context.Context,
	employeeID uuid.UUID,
	q domain.ListQuery,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + `
			  WHERE w.created_by_id = $1 OR w.assigned_to_id = $1
			  ORDER BY ` + q.OrderBy("w") + `
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, employeeID, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items for employee")
	}
	return collectPostgreSQLWorkItems(rows)
}

// CountForEmployee counts the items created by or assigned to the employee
func (r *PostgreSQLWorkItemRepository) CountForEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM work_items WHERE created_by_id = $1 OR assigned_to_id = $1`,
		"failed to count work items for employee", employeeID)
}

// List returns one page of all work items
func (r *PostgreSQLWorkItemRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + `
			  ORDER BY ` + q.OrderBy("w") + `
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items")
	}
	return collectPostgreSQLWorkItems(rows)
}

// Count returns the total number of work items
func (r *PostgreSQLWorkItemRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM work_items`, "failed to count work items")
}

// CountByStatus returns the number of work items per status. Statuses with no
// items are absent from the map.
func (r *PostgreSQLWorkItemRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, `SELECT status, COUNT(*) FROM work_items GROUP BY status`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count work items by status")
	}
	return collectStatusCounts(rows)
}

// CountAssignedTo counts the items assigned to the employee
func (r *PostgreSQLWorkItemRepository) CountAssignedTo(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM work_items WHERE assigned_to_id = $1`,
		"failed to count assigned work items", employeeID)
}

// CountCreatedBy counts the items created by the employee
func (r *PostgreSQLWorkItemRepository) CountCreatedBy(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM work_items WHERE created_by_id = $1`,
		"failed to count created work items", employeeID)
}

func (r *PostgreSQLWorkItemRepository) count(ctx context.Context, query, message string, args ...any) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var total int64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, message)
	}
	return total, nil
}

func scanPostgreSQLWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var item domain.WorkItem
	var assignedTo uuid.NullUUID
	err := row.Scan(
		&item.ID, &item.Title, &item.Description, &item.Status,
		&item.CreatedByID, &item.CreatedByName, &assignedTo, &item.AssignedToName,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		item.AssignedToID = &assignedTo.UUID
	}
	return &item, nil
}

func collectPostgreSQLWorkItems(rows *sql.Rows) ([]*domain.WorkItem, error) {
	defer rows.Close() //nolint:errcheck

	items := make([]*domain.WorkItem, 0)
	for rows.Next() {
		item, err := scanPostgreSQLWorkItem(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan work item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate work items")
	}
	return items, nil
}

func collectStatusCounts(rows *sql.Rows) (map[domain.Status]int64, error) {
	defer rows.Close() //nolint:errcheck

	counts := make(map[domain.Status]int64, len(domain.Statuses))
	for rows.Next() {
		var status domain.Status
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan status count")
		}
		counts[status] = total
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate status counts")
	}
	return counts, nil
}

// nullableID converts an optional id into a driver value, nil for NULL.
func nullableID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
