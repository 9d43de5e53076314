package schema

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a request failure. The set is closed: every error surfaced
// by the transport pipeline carries exactly one Kind.
type Kind string

const (
	// KindNetwork means no response was received at all.
	KindNetwork Kind = "network"
	// KindTimeout means the request or its context deadline timed out.
	KindTimeout Kind = "timeout"
	// KindAuth covers 401/403 responses and missing local credentials.
	KindAuth Kind = "auth"
	// KindValidation covers 422 responses carrying field-level errors.
	KindValidation Kind = "validation"
	// KindRateLimit covers 429 responses, optionally with a Retry-After hint.
	KindRateLimit Kind = "rate_limit"
	// KindServer covers 5xx responses.
	KindServer Kind = "server"
	// KindClient covers the remaining 4xx responses.
	KindClient Kind = "client"
)

// Error is the single error type returned by the pipeline; Kind plus the
// structured payload fields replace an inheritance hierarchy.
type Error struct {
	Kind       Kind
	Status     int
	Problem    *ProblemDetails
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Problem != nil && e.Problem.Detail != "":
		return fmt.Sprintf("%v: %v (%v)", e.Kind, e.Problem.Detail, e.Status)
	case e.Problem != nil:
		return fmt.Sprintf("%v: %v (%v)", e.Kind, e.Problem.Title, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error kind is eligible for retry; idempotency
// gating happens separately in the retry policy.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimit, KindServer:
		return true
	}
	return false
}

// FieldErrors returns the field-level validation errors when present.
func (e *Error) FieldErrors() []FieldError {
	if e.Problem == nil {
		return nil
	}
	return e.Problem.Errors
}

// ErrNotAuthenticated is returned before any network call when a request
// requires a credential and none is configured.
var ErrNotAuthenticated = &Error{Kind: KindAuth, Err: errors.New("not authenticated")}

// NewNetworkError creates a network error
func NewNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

// NewAuthError creates an auth error for a 401/403 response
func NewAuthError(status int, problem *ProblemDetails) *Error {
	return &Error{Kind: KindAuth, Status: status, Problem: problem}
}

// AsError extracts *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ret *Error
	if errors.As(err, &ret) {
		return ret, true
	}
	return nil, false
}

// IsKind reports whether err carries the supplied kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := AsError(err); ok {
		return e.Kind == kind
	}
	return false
}

// IsAuth reports whether err is an authentication error.
func IsAuth(err error) bool {
	return IsKind(err, KindAuth)
}

// IsRetryable reports whether err is of a retryable kind.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable()
	}
	return false
}
