package apperr

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("request method not allowed")

	// ErrCorrupt marks stored data that no longer passes validation. It is
	// a server fault even when a ValidationError is wrapped with it.
	ErrCorrupt = errors.New("failed validation")
)

// ConnectionError means the store could not be reached at all.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string { return e.Op + ": connection: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is a store operation that failed after the input passed validation.
// SQLState is empty when the driver did not report one.
type QueryError struct {
	Op       string
	SQLState string
	Err      error
}

func (e *QueryError) Error() string {
	if e.SQLState != "" {
		return e.Op + ": " + e.Err.Error() + " (SQLSTATE " + e.SQLState + ")"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error { return e.Err }

// Status picks the HTTP status for err. Anything unrecognised is a 500.
func Status(err error) int {
	var (
		verr *models.ValidationError
		cerr *ConnectionError
		qerr *QueryError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &cerr), errors.As(err, &qerr), errors.Is(err, ErrCorrupt):
		return http.StatusInternalServerError
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// IsConnection reports whether err (or anything it wraps) is a ConnectionError.
func IsConnection(err error) bool {
	var cerr *ConnectionError
	return errors.As(err, &cerr)
}
