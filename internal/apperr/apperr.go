// Package apperr defines the error taxonomy shared by the booking wizard
// and the appointment lifecycle manager.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a status update or reschedule whose target id is
	// unknown. State stays unchanged.
	ErrNotFound = errors.New("appointment not found")

	// ErrConflict marks a reschedule whose target slot is no longer
	// available at commit time. The prior schedule is preserved.
	ErrConflict = errors.New("slot no longer available")

	// ErrInvalidTransition marks a status change outside the lifecycle
	// graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStaleLoad marks a dependent-list response that arrived after the
	// selection it was issued for changed. Callers discard the result.
	ErrStaleLoad = errors.New("stale load discarded")
)

// ValidationError blocks a wizard action locally (advancing without the
// required field, or selecting an unavailable slot). It is never surfaced
// as a hard failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CollaboratorError wraps a failed repository call. It is retryable: local
// state is preserved so the caller can retry without re-entering input. A
// collaborator timeout is treated identically to any other fetch failure.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator unavailable: %s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Collaborator wraps err as a CollaboratorError for operation op.
func Collaborator(op string, err error) *CollaboratorError {
	return &CollaboratorError{Op: op, Err: err}
}

// IsCollaborator reports whether err wraps a CollaboratorError.
func IsCollaborator(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
