package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert collides with an existing
	// unique key, e.g. two callers computing the same route quote.
	ErrDuplicate = errors.New("entity already exists")
)
