package models

import (
	"errors"
	"fmt"
)

// Domain error taxonomy shared by repositories, services and handlers.
var (
	ErrNotFound            = errors.New("not found")
	ErrResourceBusy        = errors.New("resource busy")
	ErrAlreadyRegistered   = errors.New("sale already registered")
	ErrNotDelivered        = errors.New("order is not delivered yet")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError reports malformed or missing input. It is returned
// before any side effect runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
