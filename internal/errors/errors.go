// Package errors holds the sentinel errors shared by every OpsPilot domain.
// Domain packages wrap these sentinels with their own messages so handlers can
// map any failure to an HTTP status with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the write collides with existing data, such as a duplicate email.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller is not authenticated or presented bad credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is authenticated but lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message while keeping it reachable through errors.Is.
// A nil err yields nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
