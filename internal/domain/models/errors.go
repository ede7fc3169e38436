package models

import "errors"

// Error taxonomy shared by services and the HTTP layer. Services wrap these
// with a human readable message: fmt.Errorf("%w: shift already open", ErrConflict).
var (
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrOutOfRange      = errors.New("out of range")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)
