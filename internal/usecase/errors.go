package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNoAuthenticatedUser   = errors.New("no authenticated user")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrSubmissionInFlight    = errors.New("submission already in flight")
)
