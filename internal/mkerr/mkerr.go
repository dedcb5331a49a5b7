// Package mkerr defines the error-kind taxonomy shared across Mira's
// components. Callers inspect the structured Kind, never error strings.
package mkerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and recovery decisions.
type Kind string

const (
	InvalidArgument    Kind = "invalid_argument"
	NotFound           Kind = "not_found"
	PermissionDenied   Kind = "permission_denied"
	Contention         Kind = "contention"
	ProviderUnavailable Kind = "provider_unavailable"
	Timeout            Kind = "timeout"
	DataIntegrity      Kind = "data_integrity"
	Internal           Kind = "internal"
)

// Error wraps an underlying cause with a Kind and an optional recovery hint.
type Error struct {
	Kind  Kind
	Msg   string
	Hint  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a Kind to an existing error.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// WithHint attaches a user-facing recovery hint and returns the receiver.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// KindOf extracts the Kind of err, returning Internal if err does not carry one.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return Internal
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// InvalidArgumentf builds an InvalidArgument error with a tool/action/field hint,
// per spec ("tool name + action + missing field").
func InvalidArgumentf(tool, action, field, format string, args ...any) *Error {
	return &Error{
		Kind: InvalidArgument,
		Msg:  fmt.Sprintf(format, args...),
		Hint: fmt.Sprintf("tool=%s action=%s field=%s", tool, action, field),
	}
}
