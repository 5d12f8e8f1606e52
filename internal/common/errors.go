// Package common defines shared constants and sentinel errors used across
// the userkeeper server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorRegistration    = errors.New("registration error")
	ErrorInvalidArgument = errors.New("invalid argument")

	// Transport-level errors (request decoding and field validation).
	ErrorValidation = errors.New("validation error")
)

// DetailedError pairs one of the sentinel kinds above with a message meant
// for the caller. Error returns only the message; errors.Is matches the kind.
type DetailedError struct {
	Kind error
	Msg  string
}

// NewError builds a DetailedError of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) *DetailedError {
	return &DetailedError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *DetailedError) Error() string {
	return e.Msg
}

func (e *DetailedError) Unwrap() error {
	return e.Kind
}
