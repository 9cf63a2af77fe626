// Package apperror defines the error kinds surfaced by the product API and
// their HTTP status codes.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the API boundary.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindUpstream:
		return "UpstreamError"
	default:
		return "ServerError"
	}
}

// Error is an error with a kind and a message that is safe to show to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound reports an unknown identifier.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream reports a failure of an external collaborator such as the image host.
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// Server wraps an uncategorized failure.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Message: ServerMessage, Err: err}
}

// ServerMessage is the generic message returned for uncategorized failures.
const ServerMessage = "Server error"

// KindOf returns the kind of err, or KindServer if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusCode maps err to an HTTP status code.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be shown to the caller. Server
// errors never expose their cause.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindServer && e.Message != "" {
		return e.Message
	}
	return ServerMessage
}
