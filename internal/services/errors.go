package services

import "errors"

// Error kinds. Every service error wraps exactly one of these, and the HTTP
// boundary maps the kind to a status code.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

type serviceError struct {
	kind    error
	message string
}

func (e *serviceError) Error() string {
	return e.message
}

func (e *serviceError) Unwrap() error {
	return e.kind
}

func newError(kind error, message string) error {
	return &serviceError{kind: kind, message: message}
}
