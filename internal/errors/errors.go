// Package errors defines the domain error taxonomy shared by services and the
// HTTP layer. Services return these errors; a single handler in the HTTP layer
// maps them to problem-details responses.
//
// Usage:
//
//	if exists {
//	    return apperrors.Request("A book with this title already exists")
//	}
//
//	if errors.Is(err, apperrors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind classifies a domain error.
type Kind string

const (
	KindRequest         Kind = "RequestError"
	KindUnauthorized    Kind = "UnauthorizedError"
	KindNotFound        Kind = "NotFoundError"
	KindTooManyRequests Kind = "TooManyRequestsError"
	KindUnexpected      Kind = "UnexpectedError"
)

// HTTPStatus returns the status code a kind is reported with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Title returns the short problem title for a kind.
func (k Kind) Title() string {
	switch k {
	case KindRequest:
		return "Bad Request"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "Not Found"
	case KindTooManyRequests:
		return "Too Many Requests"
	default:
		return "Internal Server Error"
	}
}

// Error is a domain error carrying one or more human-readable messages.
type Error struct {
	Kind     Kind
	Messages []string

	// RetryAfter is set on rate-limit errors.
	RetryAfter time.Duration

	cause error
}

// Error joins the messages for display.
func (e *Error) Error() string {
	msg := e.Detail()
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Detail returns the client-facing message without the wrapped cause.
func (e *Error) Detail() string {
	return strings.Join(e.Messages, "; ")
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus returns the status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Messages: e.Messages, RetryAfter: e.RetryAfter, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrRequest         = &Error{Kind: KindRequest, Messages: []string{"bad request"}}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Messages: []string{"unauthorized"}}
	ErrNotFound        = &Error{Kind: KindNotFound, Messages: []string{"not found"}}
	ErrTooManyRequests = &Error{Kind: KindTooManyRequests, Messages: []string{"too many requests"}}
	ErrUnexpected      = &Error{Kind: KindUnexpected, Messages: []string{"unexpected error"}}
)

// Request reports bad input or a violated business rule.
func Request(messages ...string) *Error {
	return &Error{Kind: KindRequest, Messages: messages}
}

// Requestf is Request with a formatted message.
func Requestf(format string, args ...any) *Error {
	return Request(fmt.Sprintf(format, args...))
}

// Unauthorized reports a missing credential or a denied permission.
func Unauthorized(messages ...string) *Error {
	return &Error{Kind: KindUnauthorized, Messages: messages}
}

// NotFound reports a missing resource.
func NotFound(messages ...string) *Error {
	return &Error{Kind: KindNotFound, Messages: messages}
}

// NotFoundf is NotFound with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return NotFound(fmt.Sprintf(format, args...))
}

// TooManyRequests reports a rate-limited caller.
func TooManyRequests(messages ...string) *Error {
	return &Error{Kind: KindTooManyRequests, Messages: messages}
}

// RateLimited is TooManyRequests with the time until the caller may retry.
func RateLimited(retryAfter time.Duration, messages ...string) *Error {
	return &Error{Kind: KindTooManyRequests, Messages: messages, RetryAfter: retryAfter}
}

// Unexpected wraps an internal failure. Its cause is never shown to clients.
func Unexpected(cause error) *Error {
	return &Error{Kind: KindUnexpected, Messages: []string{"An unexpected error occurred."}, cause: cause}
}

// KindOf returns the kind of err, or KindUnexpected for non-domain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
