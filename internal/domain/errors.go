package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals request parameters that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnsupportedFormat signals an upload whose extension has no reader.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrSourceRead signals an unexpected failure while reading a source file.
	ErrSourceRead = errors.New("source read failed")
	// ErrIndexUnavailable signals that the index has not been built yet.
	ErrIndexUnavailable = errors.New("index unavailable")
)

// FieldError wraps ErrInvalidRequest with the offending parameter name.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidRequest.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidRequest }

// NewFieldError creates a validation error for a single parameter.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
