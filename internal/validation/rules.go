// Package validation holds the jellydator/validation rules shared by the
// request DTOs, plus the bridge from rule failures to ErrInvalidInput.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/opspilot/platform/internal/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError turns a rule failure into ErrInvalidInput so handlers
// answer 422 with the rule messages.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email accepts an address after trimming surrounding whitespace. Case is not
// checked here; the employee use case lowercases before storing.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(strings.TrimSpace(s))
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank rejects strings made only of whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Password returns a rule for new account passwords. Length is counted in
// runes. Control characters are refused since they cannot be typed back at
// the login form. An empty value passes so the rule composes with Required.
func Password(minLength int) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_password_type", "password must be a string")
		}
		if s == "" {
			return nil
		}
		if utf8.RuneCountInString(s) < minLength {
			return validation.NewError(
				"validation_password_min_length",
				"password must be at least "+strconv.Itoa(minLength)+" characters",
			)
		}
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_password_blank", "password must not be blank")
		}
		if strings.ContainsFunc(s, unicode.IsControl) {
			return validation.NewError("validation_password_control", "password must not contain control characters")
		}
		return nil
	})
}
