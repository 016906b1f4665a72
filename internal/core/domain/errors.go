package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidConfiguration indicates bad engine parameters, for example an
	// overlap that is not smaller than the chunk size or fusion weights that
	// do not sum to one. Fatal at construction.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput indicates an empty or otherwise unusable document or
	// query. The existing corpus is unaffected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded indicates the document limit has been reached.
	// The corpus is unchanged.
	ErrCapacityExceeded = errors.New("document capacity exceeded")

	// ErrEmptyIndex indicates a query against an empty corpus. Callers should
	// surface "no documents indexed" rather than treating it as a crash.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrModelUnavailable indicates that no configured embedding model could
	// be reached. Fatal at engine startup: semantic search cannot function
	// without an embedding model.
	ErrModelUnavailable = errors.New("no embedding model available")

	// ErrDimensionMismatch indicates a vector whose dimension differs from
	// the one the index was built with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
