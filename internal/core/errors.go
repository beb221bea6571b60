package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	// KindInternal is anything unexpected.
	KindInternal Kind = iota
	// KindBadRequest means the caller sent missing or unusable input.
	KindBadRequest
	// KindUnavailable means the service is saturated; the caller may retry.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

var (
	// ErrMissingInput is returned when the file or the mapping is absent.
	ErrMissingInput = errors.New("missing file or mapping")

	// ErrNoFile is returned by column inspection without an upload.
	ErrNoFile = errors.New("no file provided")

	// ErrNoContacts is returned by the report path for an empty contact list.
	ErrNoContacts = errors.New("no contact data provided")

	// ErrUnreadableFile wraps Table Loader failures.
	ErrUnreadableFile = errors.New("unreadable spreadsheet")
)

// Error carries a Kind and the operation that failed. Error() returns the
// wrapped message unchanged so clients see the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest wraps err as a caller error.
func BadRequest(op string, err error) error {
	return &Error{Kind: KindBadRequest, Op: op, Err: err}
}

// BadRequestf formats a caller error.
func BadRequestf(op, format string, args ...any) error {
	return BadRequest(op, fmt.Errorf(format, args...))
}

// Unavailable wraps err as a retryable saturation error.
func Unavailable(op string, err error) error {
	return &Error{Kind: KindUnavailable, Op: op, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsBadRequest reports whether err is a caller error.
func IsBadRequest(err error) bool {
	return err != nil && KindOf(err) == KindBadRequest
}
