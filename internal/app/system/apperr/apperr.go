// Package apperr defines the error kinds shared by the services and the
// HTTP layer. Services return these; handlers map them to status codes.
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated covers both unknown usernames and wrong passwords,
	// as well as requests without a valid session.
	ErrUnauthenticated = errors.New("invalid credentials")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// ValidationError reports malformed or missing input. Messages are safe to
// show to the caller.
type ValidationError struct {
	Messages []string
}

// Invalid builds a ValidationError from one or more messages.
func Invalid(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "invalid input"
	}
	return strings.Join(e.Messages, "; ")
}

// StorageError wraps a failure from the persistence layer. The wrapped error
// is for logs only; Error() returns a generic message.
type StorageError struct {
	Op  string
	Err error
}

// Storage wraps err as a StorageError for the named operation. A nil err
// stays nil, and errors that already belong to the taxonomy pass through.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string { return "storage failure" }
func (e *StorageError) Unwrap() error { return e.Err }

// IsKnown reports whether err is one of the taxonomy's client-facing kinds.
func IsKnown(err error) bool {
	var ve *ValidationError
	var se *StorageError
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.As(err, &ve) ||
		errors.As(err, &se)
}
