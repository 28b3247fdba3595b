package dto

import (
	"time"

	"github.com/opspilot/platform/internal/workitem/domain"
)

// WorkItemResponse represents a work item in API responses.
type WorkItemResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedByID    string    `json:"created_by_id"`
	CreatedByName  string    `json:"created_by_name"`
	AssignedToID   *string   `json:"assigned_to_id"`
	AssignedToName *string   `json:"assigned_to_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MapWorkItemToResponse converts a domain work item to an API response.
// Unassigned items render both assignee fields as null.
func MapWorkItemToResponse(item *domain.WorkItem) WorkItemResponse {
	response := WorkItemResponse{
		ID:            item.ID.String(),
		Title:         item.Title,
		Description:   item.Description,
		Status:        item.Status.String(),
		CreatedByID:   item.CreatedByID.String(),
		CreatedByName: item.CreatedByName,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if item.AssignedToID != nil {
		id := item.AssignedToID.String()
		name := item.AssignedToName
		response.AssignedToID = &id
		response.AssignedToName = &name
	}
	return response
}

// MapWorkItemsToResponse converts a slice of work items. The result is never nil.
func MapWorkItemsToResponse(items []*domain.WorkItem) []WorkItemResponse {
	responses := make([]WorkItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, MapWorkItemToResponse(item))
	}
	return responses
}

// WorkItemPageResponse is one page of work items addressed by page number.
type WorkItemPageResponse struct {
	Items      []WorkItemResponse `json:"items"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	Total      int64              `json:"total"`
	TotalPages int64              `json:"total_pages"`
}

// NewWorkItemPageResponse builds a page response from a slice of items.
func NewWorkItemPageResponse(items []*domain.WorkItem, total int64, page, size int) WorkItemPageResponse {
	var totalPages int64
	if size > 0 {
		totalPages = (total + int64(size) - 1) / int64(size)
	}
	return WorkItemPageResponse{
		Items:      MapWorkItemsToResponse(items),
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// DashboardResponse carries the admin dashboard counters.
type DashboardResponse struct {
	TotalWorkItems      int64 `json:"total_work_items"`
	OpenWorkItems       int64 `json:"open_work_items"`
	InProgressWorkItems int64 `json:"in_progress_work_items"`
	CompletedWorkItems  int64 `json:"completed_work_items"`
	RejectedWorkItems   int64 `json:"rejected_work_items"`
	MyAssignedItems     int64 `json:"my_assigned_items"`
	MyCreatedItems      int64 `json:"my_created_items"`
}

// MapDashboardToResponse converts dashboard metrics to an API response.
func MapDashboardToResponse(metrics *domain.DashboardMetrics) DashboardResponse {
	return DashboardResponse{
		TotalWorkItems:      metrics.Total,
		OpenWorkItems:       metrics.Open,
		InProgressWorkItems: metrics.InProgress,
		CompletedWorkItems:  metrics.Completed,
		RejectedWorkItems:   metrics.Rejected,
		MyAssignedItems:     metrics.MyAssigned,
		MyCreatedItems:      metrics.MyCreated,
	}
}
