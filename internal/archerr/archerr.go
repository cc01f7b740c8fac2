// Package archerr provides the typed errors shared by the archive store,
// the persistence layer and the request router. Every error carries a
// stable machine-readable kind so client tooling can branch on it without
// string-matching the message.
package archerr

import (
	"errors"
	"fmt"
)

// Kind identifies a failure mode. The string values are part of the
// external contract: they appear verbatim in error replies.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindDuplicateName        Kind = "duplicate_name"
	KindConfirmationRequired Kind = "confirmation_required"
	KindInvalidArguments     Kind = "invalid_arguments"
	KindNoCurrentProject     Kind = "no_current_project"
	KindPersistenceFailure   Kind = "persistence_failure"
	KindInternal             Kind = "internal"
)

// Error is a failure with a stable kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func DuplicateName(format string, args ...interface{}) *Error {
	return New(KindDuplicateName, format, args...)
}

func ConfirmationRequired(format string, args ...interface{}) *Error {
	return New(KindConfirmationRequired, format, args...)
}

func InvalidArguments(format string, args ...interface{}) *Error {
	return New(KindInvalidArguments, format, args...)
}

func NoCurrentProject() *Error {
	return New(KindNoCurrentProject, "no project selected; create or switch to a project first")
}

func PersistenceFailure(err error, format string, args ...interface{}) *Error {
	return Wrap(KindPersistenceFailure, err, format, args...)
}

// KindOf extracts the kind from any error in the chain, defaulting to
// KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the human-readable message from any error in the
// chain, falling back to err.Error() for untyped errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
