package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no document
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert or update violates a unique index
	ErrDuplicate = errors.New("duplicate key")
)
