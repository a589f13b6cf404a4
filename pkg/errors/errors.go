package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrPublished           = New("PAPER_PUBLISHED", http.StatusConflict, "paper is published")
	ErrUpstreamUnavailable = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "upstream backend unreachable")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromStatus maps an upstream HTTP status plus message into a typed error,
// preserving whatever the backend reported.
func FromStatus(status int, message string) *Error {
	code := "UPSTREAM_ERROR"
	switch status {
	case http.StatusBadRequest:
		code = ErrValidation.Code
	case http.StatusUnauthorized:
		code = ErrUnauthorized.Code
	case http.StatusForbidden:
		code = ErrForbidden.Code
	case http.StatusNotFound:
		code = ErrNotFound.Code
	case http.StatusConflict:
		code = ErrConflict.Code
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return New(code, status, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
