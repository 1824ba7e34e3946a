// Package apperror classifies failures into the HTTP-facing kinds the API
// reports: bad request, unauthorized, forbidden, not found and internal.
package apperror

import (
	"errors"
	"net/http"
)

// Error is an error with the status and client-facing message it maps to.
// Err keeps the underlying cause for logs; it is never sent to clients.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string, cause error) *Error {
	return &Error{Status: status, Message: message, Err: cause}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message, nil) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message, nil) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message, nil) }

func Internal(message string, cause error) *Error {
	return New(http.StatusInternalServerError, message, cause)
}

// Wrap keeps an existing *Error as is; anything else becomes an internal
// error carrying fallback as its message.
func Wrap(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Internal(fallback, err)
}

// Status returns the HTTP status for err, 500 when unclassified.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
