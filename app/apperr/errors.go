// Package apperr defines the failure kinds returned by the catalog services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can react without string matching.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "infrastructure"
	}
}

// HTTPStatus maps the kind onto the status code the HTTP layer responds with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed failure carrying a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInfrastructure {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind-only targets for errors.Is.
var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrInfrastructure = &Error{Kind: KindInfrastructure}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Validation wraps a validation error as InvalidInput, keeping its text.
func Validation(err error) *Error {
	return &Error{Kind: KindInvalidInput, Message: err.Error(), Err: err}
}

// Infrastructure wraps an unclassified store failure. The message is what
// callers see; err is kept for logs and errors.Is.
func Infrastructure(err error, message string) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: err}
}

// KindOf returns the kind of err, treating untyped errors as infrastructure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// Message returns the caller-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
