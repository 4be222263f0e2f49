// Package errors defines the error kinds the service distinguishes and how
// each one is presented over HTTP.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")
	ErrNotSupported = errors.New("operation not supported")
)

// AppError carries a client-facing code and message alongside the
// underlying error, which is only ever logged.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFound reports that resource id does not exist.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput reports a request the caller must fix before retrying.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// StorageFailure reports that the review store could not be reached or
// failed. The cause is kept for logs and never shown to clients.
func StorageFailure(cause error) *AppError {
	return &AppError{
		Code:    "STORAGE_FAILURE",
		Message: "review storage is unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     storageError{cause},
	}
}

// NotSupported reports an operation that is routed but not implemented.
func NotSupported(operation string) *AppError {
	return &AppError{
		Code:    "NOT_SUPPORTED",
		Message: operation + " is not supported",
		Status:  http.StatusNotImplemented,
		Err:     ErrNotSupported,
	}
}

// storageError matches both ErrStorage and its cause.
type storageError struct{ cause error }

func (e storageError) Error() string {
	if e.cause == nil {
		return ErrStorage.Error()
	}
	return ErrStorage.Error() + ": " + e.cause.Error()
}

func (e storageError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrStorage}
	}
	return []error{ErrStorage, e.cause}
}

type kind struct {
	target  error
	status  int
	code    string
	message string
}

// kinds is checked in order. An empty message shows err.Error() to the
// client, which only suits errors built from user input.
var kinds = []kind{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{ErrStorage, http.StatusServiceUnavailable, "STORAGE_FAILURE", "review storage is unavailable"},
	{ErrNotSupported, http.StatusNotImplemented, "NOT_SUPPORTED", "operation not supported"},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", ""},
}

// Classify returns the HTTP status, error code and client-facing message for
// err. An AppError anywhere in the chain wins; otherwise the first matching
// kind is used, and anything unrecognized is an internal error.
func Classify(err error) (status int, code, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			if k.message == "" {
				return k.status, k.code, err.Error()
			}
			return k.status, k.code, k.message
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HTTPStatus returns the status Classify would pick for err.
func HTTPStatus(err error) int {
	status, _, _ := Classify(err)
	return status
}
