package dto

import (
	validation "github.com/jellydator/validation"
)

// SetActiveRequest toggles an employee's active flag.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// Validate checks that the flag is present; false is a valid value.
func (r *SetActiveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Active, validation.NotNil.Error("active is required")),
	)
}
