package apperr

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindValidation
	KindConflict
	KindNotFound
	KindConnection
)

var kindNames = map[Kind]string{
	KindInternal:       "InternalError",
	KindInvalidRequest: "InvalidRequest",
	KindValidation:     "ValidationError",
	KindConflict:       "ConflictError",
	KindNotFound:       "NotFound",
	KindConnection:     "ConnectionError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "InternalError"
}

// StatusCode is the HTTP status a failure of this kind is reported with.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidRequest, KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the only error type that crosses the service boundary. Messages
// are user-facing; Err keeps the lower-level cause for logs and diagnostics.
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Err == nil {
		return msg
	}
	if msg == "" {
		return e.Err.Error()
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message joins every user-facing message with ", ".
func (e *Error) Message() string {
	return strings.Join(e.Messages, ", ")
}

func InvalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Messages: []string{msg}}
}

func Validation(msgs ...string) *Error {
	return &Error{Kind: KindValidation, Messages: msgs}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Messages: []string{msg}}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{msg}}
}

func Connection(err error) *Error {
	return &Error{Kind: KindConnection, Messages: []string{"Failed to connect to database"}, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{msg}, Err: err}
}

// As extracts the tagged error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; untagged errors are internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Ensure returns err as a tagged error, tagging untagged errors as internal
// failures with the given message.
func Ensure(err error, msg string) *Error {
	if e, ok := As(err); ok {
		return e
	}
	return Internal(msg, err)
}
