package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrBackend               = errors.New("backend rejected request")
	ErrDataShape             = errors.New("unexpected data shape")
	ErrMutationInFlight      = errors.New("mutation already in flight")
)
