package gerr

import (
	"database/sql"
	"errors"
	"net/http"
)

// Error is an error that carries the HTTP status it should be answered with.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// BadRequest reports an invalid request with a human readable reason.
func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

var (
	InvalidCredentials = New(http.StatusUnauthorized, "invalid credentials")
	Unauthorized       = New(http.StatusUnauthorized, "unauthorized")
	NotFound           = New(http.StatusNotFound, "not found")
	TooManyRequests    = New(http.StatusTooManyRequests, "too many requests, please try again later")
	UnknownContentKind = New(http.StatusNotFound, "unknown content kind")
	Internal           = New(http.StatusInternalServerError, "internal error")
)

// Status maps err to the HTTP status of the response. Missing rows are 404,
// anything unknown is 500.
func Status(err error) int {
	var e *Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &e):
		return e.Status
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Public returns the message safe to show to the client.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound.Message
	}
	return Internal.Message
}
