// Package errors defines the domain error taxonomy for the translation
// platform: sentinel errors, an AppError wrapper carrying an HTTP status,
// and the mapping from errors to response codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedRecord signals a phrase-table line that does not match the
	// expected field shape. Table construction is all-or-nothing, so this
	// aborts the whole load.
	ErrMalformedRecord = errors.New("malformed phrase table record")

	// ErrGrammarInconsistency signals that the token enumerator rejected a
	// push for a token it had just reported as legal. The derivation stack
	// can no longer be trusted, so the whole parse must abort.
	ErrGrammarInconsistency = errors.New("grammar enumerator inconsistency")

	// ErrMalformedSyntax signals an unusable grammar syntax file.
	ErrMalformedSyntax = errors.New("malformed grammar syntax file")

	// ErrInvalidInput marks request validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable marks rewrite-store query failures.
	ErrStoreUnavailable = errors.New("rewrite store unavailable")
)

// AppError pairs a sentinel error with a human-readable message and an HTTP
// status code for the service surface.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps a sentinel error into an AppError.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf wraps a sentinel error into an AppError with a formatted message.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status the service should return.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
