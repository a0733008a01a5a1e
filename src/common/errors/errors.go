// Package errors provides the structured error type shared by shopd and shopctl.
// Every error carries a domain, a code and the HTTP status it maps to, so the
// admin dashboard can tell a credentials problem from an outage without
// parsing message text.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error within a domain
type Code string

// Domain groups related error codes (e.g. "storage", "settings")
type Domain string

// Error domains
const (
	DomainAuth       Domain = "auth"
	DomainStorage    Domain = "storage"
	DomainSettings   Domain = "settings"
	DomainDatabase   Domain = "database"
	DomainValidation Domain = "validation"
	DomainInternal   Domain = "internal"
)

// Error is a structured error with domain, code and HTTP status
type Error struct {
	// Domain categorizes the error (e.g., "auth", "storage")
	Domain Domain `json:"domain"`

	// Code is unique within the domain (e.g., "not_found", "configuration")
	Code Code `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code
	HTTPStatus int `json:"-"`

	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same domain and code.
// Messages and causes are ignored so sentinel comparison keeps working after
// WithCause/WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Domain == t.Domain && e.Code == t.Code
}

// WithCause returns a copy of the error with cause attached
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Domain:     e.Domain,
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		cause:      cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		Domain:     e.Domain,
		Code:       e.Code,
		Message:    message,
		HTTPStatus: e.HTTPStatus,
		cause:      e.cause,
	}
}

// WithMessagef returns a copy of the error with a formatted custom message
func (e *Error) WithMessagef(format string, args ...interface{}) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Qualified returns the "<domain>.<code>" identifier used in API responses
func (e *Error) Qualified() string {
	return string(e.Domain) + "." + string(e.Code)
}

// New creates a new Error
func New(domain Domain, code Code, httpStatus int, message string) *Error {
	return &Error{
		Domain:     domain,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps err in a new Error
func Wrap(err error, domain Domain, code Code, httpStatus int, message string) *Error {
	return &Error{
		Domain:     domain,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		cause:      err,
	}
}

// GetHTTPStatus returns the HTTP status for err, or 500 when err carries none
func GetHTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return 500
}

// GetCode returns the error code if err wraps an *Error
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetDomain returns the error domain if err wraps an *Error
func GetDomain(err error) Domain {
	var e *Error
	if errors.As(err, &e) {
		return e.Domain
	}
	return ""
}

// Is delegates to errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As delegates to errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
