// Package dto provides data transfer objects for the authentication endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/opspilot/platform/internal/validation"
)

// LoginRequest contains the credentials presented to POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // plaintext only in transit
}

// Validate checks that both credentials are present. Format is not checked so
// a malformed email fails the same way as an unknown one.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest contains the parameters for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // plaintext only until hashed
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.Password(8),
			validation.Length(8, 128),
		),
		validation.Field(&r.FullName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Role,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
