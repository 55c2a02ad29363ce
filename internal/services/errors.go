package services

// Service error taxonomy. Handlers map these to HTTP status codes in
// handleServiceError.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// InvalidStateError marks an operation against a session in the wrong
// lifecycle state, e.g. logging to a stopped session.
type InvalidStateError struct{ Message string }

func (e *InvalidStateError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// StorageError wraps a persistence failure. Retryable by the caller; the
// services never retry on their own.
type StorageError struct{ Err error }

func (e *StorageError) Error() string { return "storage unavailable: " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }
