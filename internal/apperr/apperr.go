package apperr

import "errors"

// Terminal error classes of the API. Handlers translate these to HTTP
// statuses; everything else is a 500.
var (
	ErrValidation = errors.New("validation error")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream error")
)
