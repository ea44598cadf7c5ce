package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrDuplicateEmail = errors.New("this email is already registered")
	ErrNotFound       = errors.New("not found")
	ErrForeignKey     = errors.New("referenced user does not exist")
	ErrConnection     = errors.New("database unreachable")
	ErrNoActiveUser   = errors.New("please load user data or create a new user first")
)

// ValidationError reports a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
