package interview

import (
	"fmt"
	"time"
)

// NotFoundError means a session or question does not exist for the caller.
// Sessions owned by someone else are reported the same way.
type NotFoundError struct {
	Resource string // "session" or "question"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents malformed caller input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// GenerationFormatError means the question provider's reply could not be
// turned into a complete, well-formed question set.
type GenerationFormatError struct {
	Message string
	Cause   error
}

func (e *GenerationFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed question set: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed question set: %s", e.Message)
}

func (e *GenerationFormatError) Unwrap() error {
	return e.Cause
}

// EvaluationFormatError means the evaluation provider's reply was not a
// score in [0, 10] with feedback.
type EvaluationFormatError struct {
	Message string
	Cause   error
}

func (e *EvaluationFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed evaluation: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed evaluation: %s", e.Message)
}

func (e *EvaluationFormatError) Unwrap() error {
	return e.Cause
}

// ProviderTimeoutError means a provider call did not finish within its time bound.
type ProviderTimeoutError struct {
	Operation string
	Timeout   time.Duration
	Cause     error
}

func (e *ProviderTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Timeout)
}

func (e *ProviderTimeoutError) Unwrap() error {
	return e.Cause
}

// ProviderError represents any other failure calling the provider (transport, auth, quota).
type ProviderError struct {
	Operation string
	Cause     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// StorageError represents a persistence failure. The operation was aborted
// and none of its writes are visible.
type StorageError struct {
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
