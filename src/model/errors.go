package model

import "fmt"

// ValidationError marks malformed input: bad date format, out-of-range
// numbers, over-long strings, unknown enum values. The caller can fix the
// request and resubmit; it is never retried automatically.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError marks a row that does not exist or does not belong to the
// caller. The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError marks a duplicate-row insert outside the upsert paths.
// EnsureExists and UpsertNotes resolve conflicts in SQL, so seeing this in
// practice means a caller bypassed them.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

// StoreError wraps an underlying persistence failure. The user-visible
// message stays opaque; the wrapped error is for logs only.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
