package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidQuery        = errors.New("invalid query")
	ErrEvaluation          = errors.New("query evaluation failed")
	ErrMetadataUnavailable = errors.New("metadata store unavailable")
	ErrIndexLoad           = errors.New("index load failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
)

// Process exit codes reported by the querier binary.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitFailure = 2
)

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

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// QueryError describes why a query line was rejected. Position is the
// zero-based index of the offending token, or -1 when the line has none.
type QueryError struct {
	Reason   string
	Position int
	Token    string
}

func (e *QueryError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidQuery.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s (token %d %q)", ErrInvalidQuery.Error(), e.Reason, e.Position, e.Token)
}

func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidQuery):
		return ExitInvalid
	default:
		return ExitFailure
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrMetadataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is and As re-export the standard helpers so callers importing this package
// under the name "errors" keep access to them.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
