package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	"github.com/opspilot/platform/internal/auth/http/dto"
	authUseCase "github.com/opspilot/platform/internal/auth/usecase"
	employeeDTO "github.com/opspilot/platform/internal/employee/http/dto"
	employeeUseCase "github.com/opspilot/platform/internal/employee/usecase"
	apperrors "github.com/opspilot/platform/internal/errors"
	"github.com/opspilot/platform/internal/httputil"
	customValidation "github.com/opspilot/platform/internal/validation"
)

// loginFailureResponse is the single body returned for every rejected login.
var loginFailureResponse = httputil.ErrorResponse{
	Error:   "authentication_failed",
	Message: "Invalid email or password",
}

// AuthHandler handles login, registration and the current-principal endpoint.
type AuthHandler struct {
	authUseCase     authUseCase.AuthUseCase
	employeeUseCase employeeUseCase.UseCase
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authUseCase authUseCase.AuthUseCase,
	employeeUseCase employeeUseCase.UseCase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUseCase:     authUseCase,
		employeeUseCase: employeeUseCase,
		logger:          logger,
	}
}

// LoginHandler exchanges credentials for a bearer token.
// POST /api/auth/login - Public.
// Returns 200 OK with the token, or 401 with a constant body for every credential failure.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.Login(c.Request.Context(), authDomain.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if apperrors.Is(err, authDomain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, loginFailureResponse)
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapLoginOutputToResponse(output))
}

// RegisterHandler creates an employee account.
// POST /api/auth/register - Public for VIEWER accounts; OPERATOR and ADMIN
// accounts require an ADMIN bearer token.
// Returns 201 Created with the employee, 403 for a privileged role without an
// ADMIN principal, and 409 for a duplicate email.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := authDomain.ParseRole(req.Role)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	principal, _ := GetPrincipal(c.Request.Context())
	if err := authDomain.AuthorizeRegistration(principal, role); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	employee, err := h.employeeUseCase.Register(c.Request.Context(), employeeUseCase.RegisterEmployeeInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "employee registered",
		slog.String("email", employee.Email),
		slog.String("role", employee.Role.String()),
	)

	c.JSON(http.StatusCreated, employeeDTO.MapEmployeeToResponse(employee))
}

// MeHandler returns the authenticated principal as carried by the token.
// GET /api/me - Any authenticated role.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrAuthenticationRequired, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPrincipalToResponse(principal))
}
