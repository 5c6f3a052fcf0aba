package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Remote document errors
	ErrConfigurationMissing = errors.New("gist token and gist id must both be configured")
	ErrNetworkOrAuthFailure = errors.New("remote request failed")
	ErrMalformedDocument    = errors.New("malformed shared document")

	// Account errors
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrNotLoggedIn        = errors.New("not logged in")

	// Economy errors
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// ValidationError reports a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
