package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes a failure so the request boundary can translate it into a
// caller-visible result without inspecting free-form messages.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindDependency   Kind = "dependency"
	KindInternal     Kind = "internal"
)

// Error is the single error type crossing service boundaries. Repositories
// and services return *Error (or wrap infra errors via Map); handlers only
// ever switch on Kind.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Validation signals malformed input (self-reaction, unknown enum value, ...).
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Unauthorized signals a missing or invalid authenticated identity.
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Forbidden signals an actor that is not a participant/owner of the resource.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// NotFound signals a referenced reaction/match/user/profile that does not exist.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Conflict signals a uniqueness constraint violated by a race.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Dependency signals a failed external collaborator (photo storage, ...).
func Dependency(msg string, cause error) *Error {
	return &Error{Kind: KindDependency, Message: msg, cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// KindOf extracts the Kind of err, defaulting to KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool { return KindOf(err) == k }

// AsError is errors.As specialized for *Error.
func AsError(err error, target **Error) bool { return stderrors.As(err, target) }
