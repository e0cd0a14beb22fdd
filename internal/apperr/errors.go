// Package apperr defines the error taxonomy shared by all core operations.
// Every failure carries a kind for the transport layer to map onto a status
// code plus a human-readable message specific enough to render directly.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidArgument   Kind = "invalid_argument"
	KindConflict          Kind = "conflict"
	KindDependencyFailure Kind = "dependency_failure"
)

// Error is a kinded operation error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the human-readable message, with the wrapped cause appended
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing row or a tenant mismatch
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a role gate denial
func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a malformed decision or payload
func InvalidArgument(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a concurrent mutation detected by a conditional write.
// The caller is expected to re-read and retry the whole operation.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// DependencyFailure wraps an error from an external collaborator
func DependencyFailure(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindDependencyFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or an empty kind for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
