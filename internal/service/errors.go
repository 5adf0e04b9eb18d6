package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures; handlers map it onto HTTP status codes
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindValidation
	KindPrecondition
	KindNotFound
	KindConflict
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition_failed"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExhausted:
		return "resource_exhausted"
	default:
		return "internal"
	}
}

// Error is the error type returned by every service operation.
// Message is safe to show to the caller; Err is the underlying cause, if any.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind, so errors.Is(err, ErrNotFound) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrPreconditionFailed = &Error{Kind: KindPrecondition}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrResourceExhausted  = &Error{Kind: KindExhausted}
	ErrInternal           = &Error{Kind: KindInternal}
)

func validationError(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func notFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

// internal wraps an unexpected failure; the cause is logged, never shown
func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of err
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" && se.Kind != KindInternal {
		return se.Message
	}
	return "Internal server error"
}
