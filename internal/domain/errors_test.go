package domain

import (
	"errors"
	"io"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("from", "required")

	if got := err.Error(); got != "validation: from: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "from", Message: "required"},
		{Field: "to", Message: "required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestLookupError_KindSentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind FailureKind
		want error
	}{
		{FailureTransport, ErrTransport},
		{FailureChallenge, ErrChallenge},
		{FailureNotFound, ErrNotFound},
		{FailureExhaustedRetries, ErrRetriesExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			err := NewLookupError("run", tt.kind, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
		})
	}
}

func TestLookupError_WrapsCause(t *testing.T) {
	t.Parallel()

	err := NewLookupError("casa", FailureTransport, io.ErrUnexpectedEOF)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause should be reachable through errors.Is")
	}
	if !errors.Is(err, ErrTransport) {
		t.Error("kind sentinel should be reachable through errors.Is")
	}
	if errors.Is(err, ErrChallenge) {
		t.Error("transport failure must not match ErrChallenge")
	}
	if got := err.Reason(); got != io.ErrUnexpectedEOF.Error() {
		t.Errorf("Reason() = %q, want %q", got, io.ErrUnexpectedEOF.Error())
	}

	var le *LookupError
	if !errors.As(err, &le) || le.Word != "casa" {
		t.Errorf("errors.As did not recover the word: %+v", le)
	}
}

func TestFailureKind_Retryable(t *testing.T) {
	t.Parallel()

	if !FailureChallenge.Retryable() {
		t.Error("challenge should be retryable")
	}
	for _, k := range []FailureKind{FailureTransport, FailureNotFound, FailureExhaustedRetries} {
		if k.Retryable() {
			t.Errorf("%s should not be retryable", k)
		}
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation,
		ErrChallenge, ErrTransport, ErrRetriesExhausted,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}
