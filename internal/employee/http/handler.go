// Package http provides the administrative employee endpoints.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/employee/http/dto"
	"github.com/opspilot/platform/internal/employee/usecase"
	"github.com/opspilot/platform/internal/httputil"
	customValidation "github.com/opspilot/platform/internal/validation"
)

// EmployeeHandler handles employee administration. Every route lives under
// /api/admin and is reachable by ADMIN principals only.
type EmployeeHandler struct {
	employeeUseCase usecase.UseCase
	logger          *slog.Logger
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employeeUseCase usecase.UseCase, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeUseCase: employeeUseCase,
		logger:          logger,
	}
}

// ListHandler returns one page of employees, newest first.
// GET /api/admin/employees?offset=0&limit=50
func (h *EmployeeHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	employees, total, err := h.employeeUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, httputil.NewPageResponse(dto.MapEmployeesToResponse(employees), total, offset, limit))
}

// ListOperatorsHandler returns every OPERATOR, used to fill assignment pickers.
// GET /api/admin/employees/operators
func (h *EmployeeHandler) ListOperatorsHandler(c *gin.Context) {
	employees, err := h.employeeUseCase.ListByRole(c.Request.Context(), authDomain.RoleOperator)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEmployeesToResponse(employees))
}

// GetHandler returns a single employee.
// GET /api/admin/employees/:id
func (h *EmployeeHandler) GetHandler(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid employee ID format: must be a valid UUID"),
			h.logger)
		return
	}

	employee, err := h.employeeUseCase.GetByID(c.Request.Context(), employeeID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEmployeeToResponse(employee))
}

// SetActiveHandler activates or deactivates an employee. Deactivated
// employees cannot log in; tokens they already hold stay valid until expiry.
// PUT /api/admin/employees/:id/active
func (h *EmployeeHandler) SetActiveHandler(c *gin.Context) {
	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid employee ID format: must be a valid UUID"),
			h.logger)
		return
	}

	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	employee, err := h.employeeUseCase.SetActive(c.Request.Context(), employeeID, *req.Active)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "employee activation changed",
		slog.String("employee_id", employee.ID.String()),
		slog.Bool("active", employee.Active),
	)

	c.JSON(http.StatusOK, dto.MapEmployeeToResponse(employee))
}
