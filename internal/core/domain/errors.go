// Package domain defines the core domain models for linkauth.
package domain

import (
	"errors"
	"fmt"
)

// DomainError is a business error with a stable code.
//
// Message is safe to show to clients. Details and Cause stay server side.
type DomainError struct {
	Code    string // e.g. "LA-TOKN-4011"
	Message string
	Details string
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with details attached.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError reports whether err is a DomainError with the given code.
// An empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return code == "" || de.Code == code
	}
	return false
}

// GetErrorCode returns the code of err if it is a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Token errors.
var (
	// ErrTokenInvalid covers a signature mismatch, a malformed token or a missing token.
	ErrTokenInvalid = NewDomainError("LA-TOKN-4010", "Invalid token")

	// ErrTokenExpired is an authentic token older than the configured max age.
	ErrTokenExpired = NewDomainError("LA-TOKN-4011", "Token expired")
)

// Session errors.
var (
	// ErrNotAuthenticated is a missing, unknown or expired session cookie.
	ErrNotAuthenticated = NewDomainError("LA-SESS-4010", "Not authenticated")

	// ErrSessionNotFound is returned by stores for absent or expired ids.
	ErrSessionNotFound = NewDomainError("LA-SESS-4040", "session not found")

	// ErrSessionValidation is returned for sessions that cannot be stored.
	ErrSessionValidation = NewDomainError("LA-SESS-4000", "session validation failed")
)

// System errors.
var (
	// ErrInternal wraps any failure the caller cannot act on.
	ErrInternal = NewDomainError("LA-SYS-5000", "Internal Server Error")
)
