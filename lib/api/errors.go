// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory classifies client errors so the UI can decide how to
// present a failure (inline validation text, status-bar notice,
// retry hint) without parsing error message text.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// empty cart, blank contact number, missing table selection. These
	// are caught before any network call is made.
	CategoryValidation ErrorCategory = "validation"

	// CategoryUnauthorized indicates the service rejected the bearer
	// token. The diner needs to log in again.
	CategoryUnauthorized ErrorCategory = "unauthorized"

	// CategoryConflict indicates the operation conflicts with existing
	// state, such as booking a table another diner took first. The
	// server's message is surfaced verbatim.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient indicates a temporary failure: network error,
	// timeout, service overload. The action can be repeated manually;
	// the client never retries on its own.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected error: malformed
	// response bodies, bugs. Worth reporting rather than retrying.
	CategoryInternal ErrorCategory = "internal"
)

// Error is a categorized error returned by the client. It wraps an
// inner error, preserving the full chain for debugging while adding
// category metadata for the UI layer. Use the category-specific
// constructors rather than constructing Error directly.
type Error struct {
	// Category classifies the error for presentation decisions.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The category is not
// included in the string — it travels separately for the UI to style.
func (e *Error) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the Error wrapper.
func (e *Error) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Unauthorized creates an unauthorized error: the token was rejected.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Category: CategoryUnauthorized, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation lost to concurrent state.
func Conflict(format string, args ...any) *Error {
	return &Error{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a temporary failure that may succeed on retry.
func Transient(format string, args ...any) *Error {
	return &Error{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or bug.
func Internal(format string, args ...any) *Error {
	return &Error{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of err, or CategoryInternal when err
// carries no category information.
func CategoryOf(err error) ErrorCategory {
	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}
	return CategoryInternal
}

// ServiceError is the structured error body the restaurant service
// returns alongside a non-2xx status. The wire schema is deliberately
// minimal: a message, nothing more.
type ServiceError struct {
	// Message is the human-readable description from the server.
	Message string `json:"error"`

	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service: %d: %s", e.StatusCode, e.Message)
}

// categorize wraps a ServiceError in the Error category matching its
// HTTP status. Booking conflicts and validation rejections keep the
// server's message verbatim so the UI can show it unchanged.
func categorize(serviceError *ServiceError) *Error {
	switch {
	case serviceError.StatusCode == http.StatusUnauthorized,
		serviceError.StatusCode == http.StatusForbidden:
		return &Error{Category: CategoryUnauthorized, Err: serviceError}
	case serviceError.StatusCode == http.StatusConflict:
		return &Error{Category: CategoryConflict, Err: serviceError}
	case serviceError.StatusCode >= 400 && serviceError.StatusCode < 500:
		return &Error{Category: CategoryValidation, Err: serviceError}
	default:
		return &Error{Category: CategoryTransient, Err: serviceError}
	}
}
