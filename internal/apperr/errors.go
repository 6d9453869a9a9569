// Package apperr defines the error kinds surfaced across tool boundaries.
// Every failure leaving a service is wrapped in one of these sentinels so
// the MCP layer can map it to a stable machine-readable code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks a shape, range, or semantic precondition
	// violation in caller-supplied input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a unique or semantic constraint violation.
	ErrConflict = errors.New("conflict")

	// ErrPermissionDenied is reserved for future multi-user use; nothing
	// returns it today.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDeliveryFailed marks a notification dispatch that exhausted its
	// retry budget.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrInternal marks an unexpected storage, serialization, or
	// dependency failure.
	ErrInternal = errors.New("internal error")
)

// Invalid wraps a formatted message in ErrInvalidArgument.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound wraps a formatted message in ErrNotFound.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict wraps a formatted message in ErrConflict.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Internal wraps an underlying failure in ErrInternal, preserving the cause
// in the message for logs.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// Code returns the stable machine-readable code for err, or "INTERNAL"
// when the error does not carry a known kind.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrPermissionDenied):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrDeliveryFailed):
		return "DELIVERY_FAILED"
	default:
		return "INTERNAL"
	}
}
