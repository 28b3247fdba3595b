// Package http provides the work item endpoints for operators and administrators.
package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	authHTTP "github.com/opspilot/platform/internal/auth/http"
	"github.com/opspilot/platform/internal/httputil"
	customValidation "github.com/opspilot/platform/internal/validation"
	"github.com/opspilot/platform/internal/workitem/domain"
	"github.com/opspilot/platform/internal/workitem/http/dto"
	"github.com/opspilot/platform/internal/workitem/usecase"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// WorkItemHandler handles work item requests. Routes under /api/workitems are
// open to ADMIN and OPERATOR; routes under /api/admin are ADMIN only.
type WorkItemHandler struct {
	workItemUseCase usecase.UseCase
	logger          *slog.Logger
}

// NewWorkItemHandler creates a new work item handler.
func NewWorkItemHandler(workItemUseCase usecase.UseCase, logger *slog.Logger) *WorkItemHandler {
	return &WorkItemHandler{
		workItemUseCase: workItemUseCase,
		logger:          logger,
	}
}

// CreateHandler creates a work item owned by the caller.
// POST /api/workitems
// Returns 201 Created with the new item.
func (h *WorkItemHandler) CreateHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.CreateWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	item, err := h.workItemUseCase.Create(c.Request.Context(), principal, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "work item created",
		slog.String("work_item_id", item.ID.String()),
		slog.String("created_by", principal.Subject),
	)

	c.JSON(http.StatusCreated, dto.MapWorkItemToResponse(item))
}

// ListMineHandler returns every item created by or assigned to the caller.
// GET /api/workitems/my
func (h *WorkItemHandler) ListMineHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	items, err := h.workItemUseCase.ListMine(c.Request.Context(), principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWorkItemsToResponse(items))
}

// ListMinePageHandler returns one page of the caller's items.
// GET /api/workitems/my/paginated?page=0&size=10&sortBy=created_at&direction=desc
func (h *WorkItemHandler) ListMinePageHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	query, page, size, ok := h.parsePageQuery(c)
	if !ok {
		return
	}

	items, total, err := h.workItemUseCase.ListMinePage(c.Request.Context(), principal, query)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewWorkItemPageResponse(items, total, page, size))
}

// UpdateHandler applies a partial update to a work item.
// PUT /api/workitems/:id
func (h *WorkItemHandler) UpdateHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	item, err := h.workItemUseCase.Update(c.Request.Context(), id, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWorkItemToResponse(item))
}

// UpdateStatusHandler changes the status of a work item.
// PUT /api/workitems/:id/status
// Returns 422 for a missing or unknown status.
func (h *WorkItemHandler) UpdateStatusHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	item, err := h.workItemUseCase.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "work item status updated",
		slog.String("work_item_id", item.ID.String()),
		slog.String("status", item.Status.String()),
	)

	c.JSON(http.StatusOK, dto.MapWorkItemToResponse(item))
}

// ListAllHandler returns one page of every work item.
// GET /api/admin/workitems?page=0&size=10&sortBy=created_at&direction=desc
func (h *WorkItemHandler) ListAllHandler(c *gin.Context) {
	query, page, size, ok := h.parsePageQuery(c)
	if !ok {
		return
	}

	items, total, err := h.workItemUseCase.ListAll(c.Request.Context(), query)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.NewWorkItemPageResponse(items, total, page, size))
}

// AssignHandler assigns a work item to an employee.
// PUT /api/admin/workitems/:id/assign
func (h *WorkItemHandler) AssignHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	item, err := h.workItemUseCase.Assign(c.Request.Context(), id, uuid.MustParse(req.EmployeeID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "work item assigned",
		slog.String("work_item_id", item.ID.String()),
		slog.String("employee_id", req.EmployeeID),
	)

	c.JSON(http.StatusOK, dto.MapWorkItemToResponse(item))
}

// DashboardHandler returns the work item counters for the caller.
// GET /api/admin/dashboard
func (h *WorkItemHandler) DashboardHandler(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	metrics, err := h.workItemUseCase.Dashboard(c.Request.Context(), principal)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDashboardToResponse(metrics))
}

// principal returns the caller, writing a 401 when the request is anonymous.
func (h *WorkItemHandler) principal(c *gin.Context) (*authDomain.Principal, bool) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrAuthenticationRequired, h.logger)
		return nil, false
	}
	return principal, true
}

func (h *WorkItemHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid work item ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// parsePageQuery reads page, size, sortBy and direction. Page is zero-based
// and size defaults to 10.
func (h *WorkItemHandler) parsePageQuery(c *gin.Context) (domain.ListQuery, int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid page parameter: must be a non-negative integer"),
			h.logger)
		return domain.ListQuery{}, 0, 0, false
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 || size > maxPageSize {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid size parameter: must be between 1 and %d", maxPageSize),
			h.logger)
		return domain.ListQuery{}, 0, 0, false
	}

	// page*size must stay a valid offset.
	if page > math.MaxInt32/size {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid page parameter: must be at most %d for size %d", math.MaxInt32/size, size),
			h.logger)
		return domain.ListQuery{}, 0, 0, false
	}

	query, err := domain.NewListQuery(page*size, size, c.Query("sortBy"), c.Query("direction"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return domain.ListQuery{}, 0, 0, false
	}

	return query, page, size, true
}
