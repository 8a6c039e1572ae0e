package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates an unknown export or import format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// Storage Errors.

	// ErrQuotaExceeded indicates a store refused a write because it would
	// exceed its capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageExhausted indicates both the primary and the fallback store
	// refused a save. The save did not happen and the caller must tell the user.
	ErrStorageExhausted = errors.New("unable to save notebooks - storage quota exceeded")

	// Execution Errors.

	// ErrExecutionTimeout indicates a script ran past the configured timeout.
	ErrExecutionTimeout = errors.New("execution timed out")

	// ErrRateLimited indicates an execution was refused by the admission limiter.
	ErrRateLimited = errors.New("rate limited")
)
