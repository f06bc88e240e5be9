package domain

import "errors"

// Sentinel errors wrapped by the service and repository layers. Handlers map
// them to HTTP status codes in the transport error handler.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrPrecondition    = errors.New("precondition failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)
