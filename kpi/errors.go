package kpi

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotFound indicates a record, collection, or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidationInput indicates the caller supplied invalid input
	// (blank rejection reason, missing proof of deal, cutoff violation).
	// These never reach the store.
	ErrValidationInput = errors.New("invalid input")

	// ErrAuthExpired indicates a missing, invalid, or expired session token.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrForbidden indicates the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstream indicates the data store failed. The message is surfaced
	// as-is; callers do not retry.
	ErrUpstream = errors.New("upstream store error")

	// ErrUploadFailed indicates the file-upload collaborator returned a
	// non-success response. Distinct from ErrUpstream so submission handlers
	// can abort before any record write.
	ErrUploadFailed = errors.New("upload failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InputError wraps ErrValidationInput with a field and a human message.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error { return ErrValidationInput }

func NewInputError(field, message string) error {
	return &InputError{Field: field, Message: message}
}

// StepError reports a failure partway through a multi-step write. Completed
// lists the steps already committed; there is no automatic rollback, so the
// caller (and the operator reading the error) must know how far the sequence
// got.
type StepError struct {
	Step      string
	Completed []string
	Err       error
}

func (e *StepError) Error() string {
	if len(e.Completed) == 0 {
		return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %q failed after %v: %v", e.Step, e.Completed, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
