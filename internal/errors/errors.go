// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. The Message of an E is what the operator sees; the
// wrapped Err is kept for logs.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ValidationDeferred marks input accepted at edit time that turned out to be
	// unusable when a request was built (e.g. a non-numeric port).
	ValidationDeferred Kind = "validation_deferred"
	// PreconditionViolation marks an operation invoked outside its allowed phase.
	PreconditionViolation Kind = "precondition_violation"
	// RemoteFailure marks a non-2xx answer from the transfer endpoint.
	RemoteFailure Kind = "remote_failure"
	// TransportFailure marks a request that never produced a response.
	TransportFailure Kind = "transport_failure"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the operator-facing message of err: the Message of the
// first E in the chain, or err.Error() for foreign errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
