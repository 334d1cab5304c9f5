package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limited")
	// ErrTransport marks failures of the storage or network layer underneath a
	// backend call, as opposed to a rejection by the backend itself.
	ErrTransport = errors.New("transport failure")
)
