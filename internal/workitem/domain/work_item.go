// Package domain defines work items, the unit of operational work tracked by the platform.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opspilot/platform/internal/errors"
)

// Status is the lifecycle state of a work item.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusCompleted, StatusRejected}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus maps a case-insensitive status name to a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// WorkItem is a task created by an employee and optionally assigned to another.
// CreatedByName and AssignedToName are resolved from the employee directory
// when the item is read.
type WorkItem struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Status         Status
	CreatedByID    uuid.UUID
	CreatedByName  string
	AssignedToID   *uuid.UUID
	AssignedToName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Assign hands the item to an employee. An OPEN item moves to IN_PROGRESS;
// any other status is kept.
func (w *WorkItem) Assign(employeeID uuid.UUID, employeeName string) {
	id := employeeID
	w.AssignedToID = &id
	w.AssignedToName = employeeName
	if w.Status == StatusOpen {
		w.Status = StatusInProgress
	}
}

// IsAssignedTo reports whether the item is currently assigned to employeeID.
func (w *WorkItem) IsAssignedTo(employeeID uuid.UUID) bool {
	return w.AssignedToID != nil && *w.AssignedToID == employeeID
}

// DashboardMetrics aggregates work item counts for the admin dashboard.
type DashboardMetrics struct {
	Total      int64
	Open       int64
	InProgress int64
	Completed  int64
	Rejected   int64
	MyAssigned int64
	MyCreated  int64
}

// NewDashboardMetrics builds the dashboard from per-status counts. The total is
// the sum of the per-status counts.
func NewDashboardMetrics(byStatus map[Status]int64, myAssigned, myCreated int64) *DashboardMetrics {
	metrics := &DashboardMetrics{
		Open:       byStatus[StatusOpen],
		InProgress: byStatus[StatusInProgress],
		Completed:  byStatus[StatusCompleted],
		Rejected:   byStatus[StatusRejected],
		MyAssigned: myAssigned,
		MyCreated:  myCreated,
	}
	metrics.Total = metrics.Open + metrics.InProgress + metrics.Completed + metrics.Rejected
	return metrics
}

// Outbox event types emitted by the work item use case.
const (
	EventWorkItemCreated  = "workitem.created"
	EventWorkItemAssigned = "workitem.assigned"
)

// Domain-specific errors for work item operations.
var (
	// ErrWorkItemNotFound indicates the requested work item does not exist.
	ErrWorkItemNotFound = errors.Wrap(errors.ErrNotFound, "work item not found")

	// ErrAssigneeNotFound indicates the requested assignee is not a known employee.
	ErrAssigneeNotFound = errors.Wrap(errors.ErrInvalidInput, "assignee not found")

	// ErrInvalidStatus indicates a status name outside OPEN, IN_PROGRESS, COMPLETED, REJECTED.
	ErrInvalidStatus = errors.Wrap(errors.ErrInvalidInput, "invalid status")

	// ErrInvalidSortField indicates a sort field that listings do not support.
	ErrInvalidSortField = errors.Wrap(errors.ErrInvalidInput, "invalid sort field")
)
