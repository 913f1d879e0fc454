// Package errors provides the error taxonomy shared by the DPF models,
// the database loader, and the storage/API layers.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeDataFormat indicates malformed or ambiguous source data
	// (missing identifier, duplicate identifier, non-numeric field)
	TypeDataFormat Type = "DATA_FORMAT_ERROR"

	// TypeInvalidInput indicates a calculation received a value outside
	// its documented domain
	TypeInvalidInput Type = "INVALID_INPUT_ERROR"

	// TypeStorage indicates a database failure
	TypeStorage Type = "STORAGE_ERROR"

	// TypeNotFound indicates a record was not found
	TypeNotFound Type = "NOT_FOUND"
)

// Error represents a domain error with an optional wrapped cause
type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// DataFormat creates a data format error
func DataFormat(format string, args ...interface{}) *Error {
	return Newf(TypeDataFormat, format, args...)
}

// InvalidInput creates an invalid input error
func InvalidInput(format string, args ...interface{}) *Error {
	return Newf(TypeInvalidInput, format, args...)
}

// Storage creates a storage error
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// NotFound creates a not found error
func NotFound(kind, id string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", kind, id)
}
