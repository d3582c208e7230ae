// Package errors provides typed errors for the application
package errors

import stderrors "errors"

// ErrorType represents the type of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypePermission
	ErrorTypeUpstream
	ErrorTypePersistence
	ErrorTypeDelivery
	ErrorTypeInternal
)

// String returns a short label usable as a log field or metric label
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypePermission:
		return "permission"
	case ErrorTypeUpstream:
		return "upstream"
	case ErrorTypePersistence:
		return "persistence"
	case ErrorTypeDelivery:
		return "delivery"
	default:
		return "internal"
	}
}

// Error is a message tagged with its ErrorType
type Error struct {
	kind ErrorType
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Type returns the kind of the error
func (e *Error) Type() ErrorType {
	return e.kind
}

// NewValidationError creates an error for rejected user input
func NewValidationError(msg string) *Error {
	return &Error{kind: ErrorTypeValidation, msg: msg}
}

// NewPermissionError creates an error for a denied action (gate or admin check)
func NewPermissionError(msg string) *Error {
	return &Error{kind: ErrorTypePermission, msg: msg}
}

// NewUpstreamError creates an error for a failed external service call
func NewUpstreamError(msg string) *Error {
	return &Error{kind: ErrorTypeUpstream, msg: msg}
}

// NewPersistenceError creates an error for an unreadable or unwritable store
func NewPersistenceError(msg string) *Error {
	return &Error{kind: ErrorTypePersistence, msg: msg}
}

// NewDeliveryError creates an error for a failed send, forward or delete
func NewDeliveryError(msg string) *Error {
	return &Error{kind: ErrorTypeDelivery, msg: msg}
}

// NewInternalError creates an internal error
func NewInternalError(msg string) *Error {
	return &Error{kind: ErrorTypeInternal, msg: msg}
}

// TypeOf returns the ErrorType of err, ErrorTypeInternal for untyped errors
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.kind
	}
	return ErrorTypeInternal
}

func is(err error, kind ErrorType) bool {
	var typed *Error
	return stderrors.As(err, &typed) && typed.kind == kind
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	return is(err, ErrorTypeValidation)
}

// IsPermissionError checks if error is a permission error
func IsPermissionError(err error) bool {
	return is(err, ErrorTypePermission)
}

// IsUpstreamError checks if error is an upstream error
func IsUpstreamError(err error) bool {
	return is(err, ErrorTypeUpstream)
}

// IsPersistenceError checks if error is a persistence error
func IsPersistenceError(err error) bool {
	return is(err, ErrorTypePersistence)
}

// IsDeliveryError checks if error is a delivery error
func IsDeliveryError(err error) bool {
	return is(err, ErrorTypeDelivery)
}
