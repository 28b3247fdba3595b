package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	authService "github.com/opspilot/platform/internal/auth/service"
	"github.com/opspilot/platform/internal/database"
	"github.com/opspilot/platform/internal/employee/domain"
	apperrors "github.com/opspilot/platform/internal/errors"
	outboxDomain "github.com/opspilot/platform/internal/outbox/domain"
	appValidation "github.com/opspilot/platform/internal/validation"
)

// employeeUseCase handles employee-related business logic
type employeeUseCase struct {
	txManager     database.TxManager
	employeeRepo  EmployeeRepository
	outboxRepo    OutboxEventRepository
	secretService authService.SecretService
}

// NewEmployeeUseCase creates a new employee UseCase
func NewEmployeeUseCase(
	txManager database.TxManager,
	employeeRepo EmployeeRepository,
	outboxRepo OutboxEventRepository,
	secretService authService.SecretService,
) UseCase {
	return &employeeUseCase{
		txManager:     txManager,
		employeeRepo:  employeeRepo,
		outboxRepo:    outboxRepo,
		secretService: secretService,
	}
}

func validateRegisterEmployeeInput(input RegisterEmployeeInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		),
		validation.Field(&input.FullName,
			validation.Required.Error("full name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("full name must not exceed 255 characters"),
		),
		validation.Field(&input.Role,
			validation.Required.Error("role is required"),
			validation.By(func(value interface{}) error {
				if role, _ := value.(authDomain.Role); !role.Valid() {
					return validation.NewError("validation_role", "role must be one of ADMIN, OPERATOR, VIEWER")
				}
				return nil
			}),
		),
	)
	return appValidation.WrapValidationError(err)
}

func (uc *employeeUseCase) Register(ctx context.Context, input RegisterEmployeeInput) (*domain.Employee, error) {
	if err := validateRegisterEmployeeInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.secretService.HashSecret(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	employee := &domain.Employee{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     domain.NormalizeEmail(input.Email),
		Password:  hashedPassword,
		FullName:  strings.TrimSpace(input.FullName),
		Role:      input.Role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.employeeRepo.Create(ctx, employee); err != nil {
			return err
		}

		event, err := outboxDomain.NewOutboxEvent(domain.EventEmployeeRegistered, map[string]any{
			"employee_id": employee.ID,
			"email":       employee.Email,
			"full_name":   employee.FullName,
			"role":        employee.Role,
		})
		if err != nil {
			return err
		}

		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return apperrors.Wrap(err, "failed to create outbox event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return employee, nil
}

func (uc *employeeUseCase) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return uc.employeeRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

func (uc *employeeUseCase) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return uc.employeeRepo.GetByID(ctx, id)
}

func (uc *employeeUseCase) List(ctx context.Context, offset, limit int) ([]*domain.Employee, int64, error) {
	employees, err := uc.employeeRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := uc.employeeRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (uc *employeeUseCase) ListByRole(ctx context.Context, role authDomain.Role) ([]*domain.Employee, error) {
	if !role.Valid() {
		return nil, authDomain.ErrUnknownRole
	}
	return uc.employeeRepo.ListByRole(ctx, role)
}

func (uc *employeeUseCase) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Employee, error) {
	var employee *domain.Employee

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		employee, err = uc.employeeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if employee.Active == active {
			return nil
		}

		employee.Active = active
		employee.UpdatedAt = time.Now().UTC()
		if err := uc.employeeRepo.UpdateActive(ctx, employee); err != nil {
			return err
		}

		event, err := outboxDomain.NewOutboxEvent(domain.EventEmployeeActivationChanged, map[string]any{
			"employee_id": employee.ID,
			"email":       employee.Email,
			"active":      employee.Active,
		})
		if err != nil {
			return err
		}

		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return apperrors.Wrap(err, "failed to create outbox event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return employee, nil
}
