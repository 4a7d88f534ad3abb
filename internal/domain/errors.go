package domain

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrUpstream         = errors.New("classification service error")
	ErrPersistence      = errors.New("persistence failure")
)
