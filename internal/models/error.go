package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingParameters  = errors.New("missing parameters")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrInternalServer     = errors.New("internal server error")

	// ErrTransient marks a downstream store failure that is safe to retry
	ErrTransient = errors.New("service temporarily unavailable")
)
