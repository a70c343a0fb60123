package llm

import (
	"errors"
	"fmt"
)

// CallErrorKind classifies why an LLM call failed from the stage
// controller's perspective. All kinds are recoverable at the conversation
// boundary: the user sees a retry message and state is left unchanged.
type CallErrorKind int

const (
	// KindTransport covers HTTP-level and protocol failures.
	KindTransport CallErrorKind = iota

	// KindEmptyResponse means the provider answered with no usable
	// candidate text.
	KindEmptyResponse

	// KindSafetyBlocked means the provider's safety filter suppressed the
	// response.
	KindSafetyBlocked
)

// String returns a short label for logging.
func (k CallErrorKind) String() string {
	switch k {
	case KindEmptyResponse:
		return "empty_response"
	case KindSafetyBlocked:
		return "safety_blocked"
	default:
		return "transport"
	}
}

// CallError is a classified LLM call failure.
type CallError struct {
	Kind CallErrorKind
	err  error
}

// NewCallError wraps an error with a call failure classification.
func NewCallError(kind CallErrorKind, err error) *CallError {
	return &CallError{Kind: kind, err: err}
}

func (e *CallError) Error() string {
	return fmt.Sprintf("llm call (%s): %v", e.Kind, e.err)
}

func (e *CallError) Unwrap() error { return e.err }

// AsCallError extracts a CallError from an error chain.
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// TransientError represents a temporary error that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent error that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error is transient and should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal and should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
