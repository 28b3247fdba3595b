package validation

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
)

// UUID validates that a string holds a canonical UUID.
// Empty strings pass so the rule composes with validation.Required.
var UUID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid_format", "must be a valid UUID")
	}
	return nil
})
