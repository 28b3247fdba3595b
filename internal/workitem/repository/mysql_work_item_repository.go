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

// MySQLWorkItemRepository handles work item persistence for MySQL. IDs are stored as BINARY(16).
type MySQLWorkItemRepository struct {
	db *sql.DB
}

// NewMySQLWorkItemRepository creates a new MySQLWorkItemRepository
func NewMySQLWorkItemRepository(db *sql.DB) *MySQLWorkItemRepository {
	return &MySQLWorkItemRepository{
		db: db,
	}
}

// Create inserts a new work item
func (r *MySQLWorkItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO work_items
			  (id, title, description, status, created_by_id, assigned_to_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	idBytes, err := item.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	creatorBytes, err := item.CreatedByID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal creator UUID")
	}
	assigneeBytes, err := nullableIDBytes(item.AssignedToID)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes, item.Title, item.Description, item.Status,
		creatorBytes, assigneeBytes, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create work item")
	}
	return nil
}

// GetByID retrieves a work item by ID
func (r *MySQLWorkItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + ` WHERE w.id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	item, err := scanMySQLWorkItem(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get work item by id")
	}
	return item, nil
}

// Update writes the mutable fields of a work item
func (r *MySQLWorkItemRepository) Update(ctx context.Context, item *domain.WorkItem) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE work_items
			  SET title = ?, description = ?, status = ?, assigned_to_id = ?, updated_at = ?
			  WHERE id = ?`

	idBytes, err := item.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	assigneeBytes, err := nullableIDBytes(item.AssignedToID)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, query,
		item.Title, item.Description, item.Status, assigneeBytes, item.UpdatedAt, idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update work item")
	}

	// Zero affected rows also means "nothing changed" on MySQL.
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

// ListForEmployee returns every item created by or assigned to the employee, newest first
func (r *MySQLWorkItemRepository) ListForEmployee(
	ctx context.Context,
	employeeID uuid.UUID,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + `
			  WHERE w.created_by_id = ? OR w.assigned_to_id = ?
			  ORDER BY w.created_at DESC, w.id DESC`

	idBytes, err := employeeID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	rows, err := querier.QueryContext(ctx, query, idBytes, idBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items for employee")
	}
	return collectMySQLWorkItems(rows)
}

// ListForEmployeePage returns one page of the items created by or assigned to the employee
func (r *MySQLWorkItemRepository) ListForEmployeePage(
	ctx context.Context,
	employeeID uuid.UUID,
	q domain.ListQuery,
) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + `
			  WHERE w.created_by_id = ? OR w.assigned_to_id = ?
			  ORDER BY ` + q.OrderBy("w") + `
			  LIMIT ? OFFSET ?`

	idBytes, err := employeeID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	rows, err := querier.QueryContext(ctx, query, idBytes, idBytes, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items for employee")
	}
	return collectMySQLWorkItems(rows)
}

// CountForEmployee counts the items created by or assigned to the employee
func (r *MySQLWorkItemRepository) CountForEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	idBytes, err := employeeID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return r.count(ctx,
		`SELECT COUNT(*) FROM work_items WHERE created_by_id = ? OR assigned_to_id = ?`,
		"failed to count work items for employee", idBytes, idBytes)
}

// List returns one page of all work items
func (r *MySQLWorkItemRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.WorkItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := workItemSelect + `
			  ORDER BY ` + q.OrderBy("w") + `
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list work items")
	}
	return collectMySQLWorkItems(rows)
}

// Count returns the total number of work items
func (r *MySQLWorkItemRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM work_items`, "failed to count work items")
}

// CountByStatus returns the number of work items per status
func (r *MySQLWorkItemRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	querier := database.GetTx(ctx, r.db)

	rows, err := querier.QueryContext(ctx, `SELECT status, COUNT(*) FROM work_items GROUP BY status`)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count work items by status")
	}
	return collectStatusCounts(rows)
}

// CountAssignedTo counts the items assigned to the employee
func (r *MySQLWorkItemRepository) CountAssignedTo(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	idBytes, err := employeeID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return r.count(ctx, `SELECT COUNT(*) FROM work_items WHERE assigned_to_id = ?`,
		"failed to count assigned work items", idBytes)
}

// CountCreatedBy counts the items created by the employee
func (r *MySQLWorkItemRepository) CountCreatedBy(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	idBytes, err := employeeID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return r.count(ctx, `SELECT COUNT(*) FROM work_items WHERE created_by_id = ?`,
		"failed to count created work items", idBytes)
}

func (r *MySQLWorkItemRepository) count(ctx context.Context, query, message string, args ...any) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var total int64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.Wrap(err, message)
	}
	return total, nil
}

func scanMySQLWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var item domain.WorkItem
	var idBytes, creatorBytes, assigneeBytes []byte
	err := row.Scan(
		&idBytes, &item.Title, &item.Description, &item.Status,
		&creatorBytes, &item.CreatedByName, &assigneeBytes, &item.AssignedToName,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := item.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := item.CreatedByID.UnmarshalBinary(creatorBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal creator UUID")
	}
	if assigneeBytes != nil {
		var assignedTo uuid.UUID
		if err := assignedTo.UnmarshalBinary(assigneeBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal assignee UUID")
		}
		item.AssignedToID = &assignedTo
	}
	return &item, nil
}

func collectMySQLWorkItems(rows *sql.Rows) ([]*domain.WorkItem, error) {
	defer rows.Close() //nolint:errcheck

	items := make([]*domain.WorkItem, 0)
	for rows.Next() {
		item, err := scanMySQLWorkItem(rows)
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

// nullableIDBytes marshals an optional id for a BINARY(16) column, nil for NULL.
func nullableIDBytes(id *uuid.UUID) (any, error) {
	if id == nil {
		return nil, nil
	}
	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal assignee UUID")
	}
	return idBytes, nil
}
