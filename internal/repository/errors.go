package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates the store rejected a write that violates a
	// uniqueness constraint.
	ErrDuplicate = errors.New("repository: duplicate key")
)
