package application

import "errors"

var (
	// ErrUnauthorized is returned when owner credentials are missing or wrong.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested event or record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrEventClosed is returned when a record is submitted for a finished event.
	ErrEventClosed = errors.New("application: event closed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message per field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}
