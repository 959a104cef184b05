package storage

import "errors"

// Storage errors for append-only stores.
var (
	// ErrDuplicateKey is returned when inserting a usage event whose id already exists.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
