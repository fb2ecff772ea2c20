package core

import "github.com/pkg/errors"

// FieldError reports a problem with one named input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries per-field messages for the API layer to render
// as a 400 response. An empty Fields set renders the wrapped error alone.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "invalid input"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// shutdownError marks a fault the server cannot recover from.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (e *shutdownError) Error() string { return e.message }

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
