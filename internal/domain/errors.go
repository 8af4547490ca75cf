// Package domain holds the error kinds and caller identity shared by the
// service, repository and handler layers.  Every failure surfaced by the
// engine wraps exactly one of the sentinel kinds below so that callers can
// classify it with errors.Is while still reading the specific violated
// condition from the message.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not_found")
	// ErrInvalidState means the operation is not valid for the entity's
	// current lifecycle state (e.g. reserving a ticket that is not AVAILABLE).
	ErrInvalidState = errors.New("invalid_state")
	// ErrForbidden means the caller neither owns the entity nor is an
	// administrator.
	ErrForbidden = errors.New("forbidden")
	// ErrSchedulingConflict means a session time slot violates the overlap or
	// buffer rule of its hall.
	ErrSchedulingConflict = errors.New("scheduling_conflict")
	// ErrValidation means the input is malformed.
	ErrValidation = errors.New("validation_error")
)

// Error couples an error kind with a human readable message describing the
// violated condition.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the kind so errors.Is(err, domain.ErrNotFound) works.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound error.
func NotFound(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

// InvalidState builds an ErrInvalidState error.
func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

// Forbidden builds an ErrForbidden error.
func Forbidden(format string, args ...any) error { return newError(ErrForbidden, format, args...) }

// SchedulingConflict builds an ErrSchedulingConflict error.
func SchedulingConflict(format string, args ...any) error {
	return newError(ErrSchedulingConflict, format, args...)
}

// Validation builds an ErrValidation error.
func Validation(format string, args ...any) error { return newError(ErrValidation, format, args...) }

// KindOf returns the sentinel kind wrapped by err, or nil when err is not a
// domain error.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvalidState, ErrForbidden, ErrSchedulingConflict, ErrValidation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
