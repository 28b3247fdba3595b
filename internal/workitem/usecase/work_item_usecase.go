package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/database"
	employeeDomain "github.com/opspilot/platform/internal/employee/domain"
	apperrors "github.com/opspilot/platform/internal/errors"
	outboxDomain "github.com/opspilot/platform/internal/outbox/domain"
	appValidation "github.com/opspilot/platform/internal/validation"
	"github.com/opspilot/platform/internal/workitem/domain"
)

// workItemUseCase implements UseCase
type workItemUseCase struct {
	txManager    database.TxManager
	workItemRepo WorkItemRepository
	employees    EmployeeDirectory
	outboxRepo   OutboxEventRepository
}

// NewWorkItemUseCase creates a new work item UseCase
func NewWorkItemUseCase(
	txManager database.TxManager,
	workItemRepo WorkItemRepository,
	employees EmployeeDirectory,
	outboxRepo OutboxEventRepository,
) UseCase {
	return &workItemUseCase{
		txManager:    txManager,
		workItemRepo: workItemRepo,
		employees:    employees,
		outboxRepo:   outboxRepo,
	}
}

func validateCreateWorkItemInput(input CreateWorkItemInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			appValidation.NotBlank,
			validation.RuneLength(1, 255).Error("title must not exceed 255 characters"),
		),
		validation.Field(&input.Description,
			validation.RuneLength(0, 5000).Error("description must not exceed 5000 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

func validateUpdateWorkItemInput(input UpdateWorkItemInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Title,
			validation.NilOrNotEmpty.Error("title must not be blank"),
			appValidation.NotBlank,
			validation.RuneLength(1, 255).Error("title must not exceed 255 characters"),
		),
		validation.Field(&input.Description,
			validation.RuneLength(0, 5000).Error("description must not exceed 5000 characters"),
		),
		validation.Field(&input.Status, validation.By(validateStatus)),
	)
	return appValidation.WrapValidationError(err)
}

func validateStatus(value interface{}) error {
	var status domain.Status
	switch v := value.(type) {
	case domain.Status:
		status = v
	case *domain.Status:
		if v == nil {
			return nil
		}
		status = *v
	}
	if !status.Valid() {
		return validation.NewError("validation_status", "status must be one of OPEN, IN_PROGRESS, COMPLETED, REJECTED")
	}
	return nil
}

// actor resolves the principal to its employee record.
func (uc *workItemUseCase) actor(
	ctx context.Context,
	principal *authDomain.Principal,
) (*employeeDomain.Employee, error) {
	if principal == nil {
		return nil, authDomain.ErrAuthenticationRequired
	}
	return uc.employees.GetByEmail(ctx, principal.Subject)
}

// assignee resolves an employee id that a work item should point to.
func (uc *workItemUseCase) assignee(ctx context.Context, id uuid.UUID) (*employeeDomain.Employee, error) {
	employee, err := uc.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employeeDomain.ErrEmployeeNotFound) {
			return nil, domain.ErrAssigneeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (uc *workItemUseCase) writeEvent(ctx context.Context, eventType string, payload map[string]any) error {
	event, err := outboxDomain.NewOutboxEvent(eventType, payload)
	if err != nil {
		return err
	}
	if err := uc.outboxRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

func assignedPayload(item *domain.WorkItem) map[string]any {
	return map[string]any{
		"work_item_id":   item.ID,
		"title":          item.Title,
		"status":         item.Status,
		"assigned_to_id": *item.AssignedToID,
	}
}

func (uc *workItemUseCase) Create(
	ctx context.Context,
	principal *authDomain.Principal,
	input CreateWorkItemInput,
) (*domain.WorkItem, error) {
	if err := validateCreateWorkItemInput(input); err != nil {
		return nil, err
	}

	var item *domain.WorkItem
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		creator, err := uc.actor(ctx, principal)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		item = &domain.WorkItem{
			ID:            uuid.Must(uuid.NewV7()),
			Title:         strings.TrimSpace(input.Title),
			Description:   input.Description,
			Status:        domain.StatusOpen,
			CreatedByID:   creator.ID,
			CreatedByName: creator.FullName,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if input.AssignedToID != nil {
			assignee, err := uc.assignee(ctx, *input.AssignedToID)
			if err != nil {
				return err
			}
			assigneeID := assignee.ID
			item.AssignedToID = &assigneeID
			item.AssignedToName = assignee.FullName
		}

		if err := uc.workItemRepo.Create(ctx, item); err != nil {
			return err
		}

		payload := map[string]any{
			"work_item_id":  item.ID,
			"title":         item.Title,
			"created_by_id": item.CreatedByID,
		}
		if item.AssignedToID != nil {
			payload["assigned_to_id"] = *item.AssignedToID
		}
		return uc.writeEvent(ctx, domain.EventWorkItemCreated, payload)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *workItemUseCase) Assign(ctx context.Context, id, employeeID uuid.UUID) (*domain.WorkItem, error) {
	var item *domain.WorkItem
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = uc.workItemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		assignee, err := uc.assignee(ctx, employeeID)
		if err != nil {
			return err
		}

		item.Assign(assignee.ID, assignee.FullName)
		item.UpdatedAt = time.Now().UTC()
		if err := uc.workItemRepo.Update(ctx, item); err != nil {
			return err
		}

		return uc.writeEvent(ctx, domain.EventWorkItemAssigned, assignedPayload(item))
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *workItemUseCase) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.Status,
) (*domain.WorkItem, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var item *domain.WorkItem
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = uc.workItemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		item.Status = status
		item.UpdatedAt = time.Now().UTC()
		return uc.workItemRepo.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *workItemUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateWorkItemInput,
) (*domain.WorkItem, error) {
	if err := validateUpdateWorkItemInput(input); err != nil {
		return nil, err
	}

	var item *domain.WorkItem
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = uc.workItemRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Title != nil {
			item.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			item.Description = *input.Description
		}
		if input.Status != nil {
			item.Status = *input.Status
		}

		reassigned := false
		if input.AssignedToID != nil && !item.IsAssignedTo(*input.AssignedToID) {
			assignee, err := uc.assignee(ctx, *input.AssignedToID)
			if err != nil {
				return err
			}
			assigneeID := assignee.ID
			item.AssignedToID = &assigneeID
			item.AssignedToName = assignee.FullName
			reassigned = true
		}

		item.UpdatedAt = time.Now().UTC()
		if err := uc.workItemRepo.Update(ctx, item); err != nil {
			return err
		}

		if reassigned {
			return uc.writeEvent(ctx, domain.EventWorkItemAssigned, assignedPayload(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *workItemUseCase) ListMine(
	ctx context.Context,
	principal *authDomain.Principal,
) ([]*domain.WorkItem, error) {
	employee, err := uc.actor(ctx, principal)
	if err != nil {
		return nil, err
	}
	return uc.workItemRepo.ListForEmployee(ctx, employee.ID)
}

func (uc *workItemUseCase) ListMinePage(
	ctx context.Context,
	principal *authDomain.Principal,
	query domain.ListQuery,
) ([]*domain.WorkItem, int64, error) {
	employee, err := uc.actor(ctx, principal)
	if err != nil {
		return nil, 0, err
	}

	items, err := uc.workItemRepo.ListForEmployeePage(ctx, employee.ID, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := uc.workItemRepo.CountForEmployee(ctx, employee.ID)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (uc *workItemUseCase) ListAll(ctx context.Context, query domain.ListQuery) ([]*domain.WorkItem, int64, error) {
	items, err := uc.workItemRepo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := uc.workItemRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (uc *workItemUseCase) Dashboard(
	ctx context.Context,
	principal *authDomain.Principal,
) (*domain.DashboardMetrics, error) {
	employee, err := uc.actor(ctx, principal)
	if err != nil {
		return nil, err
	}

	byStatus, err := uc.workItemRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	myAssigned, err := uc.workItemRepo.CountAssignedTo(ctx, employee.ID)
	if err != nil {
		return nil, err
	}

	myCreated, err := uc.workItemRepo.CountCreatedBy(ctx, employee.ID)
	if err != nil {
		return nil, err
	}

	return domain.NewDashboardMetrics(byStatus, myAssigned, myCreated), nil
}
