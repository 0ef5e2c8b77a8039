// Package errors gives taskweb failures a machine-readable [Code] so the
// CLI can pick an exit status and the HTTP server a response status without
// matching on message text.
//
// Codes group by prefix: INVALID_* for rejected input, *NOT_FOUND for
// missing resources, and TIMEOUT, UNSUPPORTED and INTERNAL_ERROR for
// execution failures.
//
//	err := errors.New(errors.ErrCodeInvalidConnection, "connection %d has no target", i)
//	if errors.Is(err, errors.ErrCodeInvalidConnection) {
//	    // reject the document
//	}
//
//	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidConnection Code = "INVALID_CONNECTION"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidVizType    Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidStrategy   Code = "INVALID_STRATEGY"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidPalette    Code = "INVALID_PALETTE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Execution errors
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// statusByCode maps codes to HTTP statuses. Unlisted codes answer 500.
var statusByCode = map[Code]int{
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidConnection: http.StatusBadRequest,
	ErrCodeInvalidFormat:     http.StatusBadRequest,
	ErrCodeInvalidVizType:    http.StatusBadRequest,
	ErrCodeInvalidStrategy:   http.StatusBadRequest,
	ErrCodeInvalidConfig:     http.StatusBadRequest,
	ErrCodeInvalidPalette:    http.StatusBadRequest,
	ErrCodeInvalidPath:       http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeFileNotFound:      http.StatusNotFound,
	ErrCodeTimeout:           http.StatusGatewayTimeout,
	ErrCodeUnsupported:       http.StatusNotImplemented,
}

// Error carries a code, a message meant for users and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status for the error's code.
func (e *Error) Status() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds an [Error] with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause, which stays reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the first [Error] in err's chain has the given code.
func Is(err error, code Code) bool {
	e, ok := as(err)
	return ok && e.Code == code
}

// GetCode returns the code of the first [Error] in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the first [Error] in err's chain
// without code or cause, falling back to err.Error().
func UserMessage(err error) string {
	if e, ok := as(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status the API server answers with. Errors
// without a code map to 500.
func HTTPStatus(err error) int {
	if e, ok := as(err); ok {
		return e.Status()
	}
	return http.StatusInternalServerError
}
