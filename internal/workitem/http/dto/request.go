// Package dto provides data transfer objects for the work item endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/opspilot/platform/internal/validation"
	"github.com/opspilot/platform/internal/workitem/domain"
	"github.com/opspilot/platform/internal/workitem/usecase"
)

// CreateWorkItemRequest contains the parameters for POST /api/workitems.
type CreateWorkItemRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// Validate checks if the create request is valid.
func (r *CreateWorkItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.RuneLength(1, 255),
		),
		validation.Field(&r.Description, validation.RuneLength(0, 5000)),
	)
}

// ToInput converts the request into use case input.
func (r *CreateWorkItemRequest) ToInput() usecase.CreateWorkItemInput {
	return usecase.CreateWorkItemInput{
		Title:        r.Title,
		Description:  r.Description,
		AssignedToID: r.AssignedToID,
	}
}

// UpdateWorkItemRequest contains a partial update for PUT /api/workitems/:id.
// Omitted fields keep their current value.
type UpdateWorkItemRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// Validate checks if the update request is valid.
func (r *UpdateWorkItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty,
			customValidation.NotBlank,
			validation.RuneLength(1, 255),
		),
		validation.Field(&r.Description, validation.RuneLength(0, 5000)),
		validation.Field(&r.Status, validation.NilOrNotEmpty),
	)
}

// ToInput converts the request into use case input, parsing the status name.
func (r *UpdateWorkItemRequest) ToInput() (usecase.UpdateWorkItemInput, error) {
	input := usecase.UpdateWorkItemInput{
		Title:        r.Title,
		Description:  r.Description,
		AssignedToID: r.AssignedToID,
	}
	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return usecase.UpdateWorkItemInput{}, err
		}
		input.Status = &status
	}
	return input, nil
}

// UpdateStatusRequest contains the parameters for PUT /api/workitems/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks that a status is present. The name itself is checked by
// domain.ParseStatus.
func (r *UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, customValidation.NotBlank),
	)
}

// AssignRequest contains the parameters for PUT /api/admin/workitems/:id/assign.
type AssignRequest struct {
	EmployeeID string `json:"employee_id"`
}

// Validate checks if the assign request is valid.
func (r *AssignRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmployeeID, validation.Required, customValidation.UUID),
	)
}
