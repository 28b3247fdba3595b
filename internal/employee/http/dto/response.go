// Package dto provides data transfer objects for the employee HTTP handlers.
package dto

import (
	"time"

	"github.com/opspilot/platform/internal/employee/domain"
)

// EmployeeResponse represents an employee in API responses. The password hash
// is never included.
type EmployeeResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapEmployeeToResponse converts a domain employee to an API response.
func MapEmployeeToResponse(employee *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        employee.ID.String(),
		Email:     employee.Email,
		FullName:  employee.FullName,
		Role:      employee.Role.String(),
		Active:    employee.Active,
		CreatedAt: employee.CreatedAt,
		UpdatedAt: employee.UpdatedAt,
	}
}

// MapEmployeesToResponse converts a slice of domain employees to API responses.
func MapEmployeesToResponse(employees []*domain.Employee) []EmployeeResponse {
	responses := make([]EmployeeResponse, 0, len(employees))
	for _, employee := range employees {
		responses = append(responses, MapEmployeeToResponse(employee))
	}
	return responses
}
