package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// Lookup failure kinds. Match with errors.Is on a *LookupError.
	ErrChallenge        = errors.New("challenge page returned")
	ErrTransport        = errors.New("transport failure")
	ErrRetriesExhausted = errors.New("challenge retries exhausted")
)

// FailureKind classifies a failed lookup.
type FailureKind int

const (
	FailureTransport FailureKind = iota
	FailureChallenge
	// FailureNotFound is reserved. A word the dictionary does not know is
	// an empty result with a nil error, not a failure.
	FailureNotFound
	FailureExhaustedRetries
)

func (k FailureKind) String() string {
	switch k {
	case FailureChallenge:
		return "challenge"
	case FailureNotFound:
		return "not_found"
	case FailureExhaustedRetries:
		return "exhausted_retries"
	default:
		return "transport"
	}
}

// Retryable reports whether the lookup may succeed when requeued.
func (k FailureKind) Retryable() bool {
	return k == FailureChallenge
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureChallenge:
		return ErrChallenge
	case FailureNotFound:
		return ErrNotFound
	case FailureExhaustedRetries:
		return ErrRetriesExhausted
	default:
		return ErrTransport
	}
}

// LookupError is a classified failure for a single word.
type LookupError struct {
	Word string
	Kind FailureKind
	Err  error
}

// NewLookupError creates a LookupError. err may be nil.
func NewLookupError(word string, kind FailureKind, err error) *LookupError {
	return &LookupError{Word: word, Kind: kind, Err: err}
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("lookup %q: %s", e.Word, e.Kind.sentinel())
	}
	return fmt.Sprintf("lookup %q: %s: %v", e.Word, e.Kind.sentinel(), e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LookupError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// Reason returns a short human-readable cause for error listings.
func (e *LookupError) Reason() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.sentinel().Error()
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
