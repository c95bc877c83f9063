// Package errors provides centralized error definitions and error handling
// utilities for the blackbox codebase. It defines sentinel errors for the
// log store lifecycle, a UsageError type for programmer misuse of the public
// API, and classification helpers.
//
// # Error Taxonomy
//
// Errors fall into four categories, each handled differently:
//
//   - Usage errors (initialize-before-use, double-initialize): surfaced
//     immediately via UsageError; these indicate programmer error.
//   - Transient I/O errors (file briefly missing): recovered locally via
//     bounded recreate-and-retry, never surfaced to callers.
//   - Resource exhaustion (low disk space): degraded silently; the write is
//     dropped rather than risking a disk-full crash in the host.
//   - Data-integrity risks during trim: the trim cycle aborts as a no-op and
//     is retried on the next append.
//
// # Usage
//
// Creating and checking errors:
//
//	err := errors.NewUsageError("log store used before Initialize")
//	if errors.IsUsage(err) { ... }
//
//	if errors.Is(err, errors.ErrNotReady) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Log store lifecycle sentinel errors
var (
	// ErrAlreadyInitialized indicates Initialize was called twice on a store.
	ErrAlreadyInitialized = New("log store already initialized")
	// ErrNotReady indicates the store was used before Initialize completed.
	ErrNotReady = New("log store not ready")
	// ErrStoreClosed indicates the store was used after Close.
	ErrStoreClosed = New("log store closed")
	// ErrCreateRetries indicates the log file could not be created within
	// the bounded retry budget. This is a fatal configuration problem, not
	// a transient condition.
	ErrCreateRetries = New("log file creation retries exhausted")
)

// Report sentinel errors
var (
	// ErrNoReporters indicates Compile was called with no reporters attached.
	ErrNoReporters = New("no reporters registered")
)

// Console tap sentinel errors
var (
	// ErrTapActive indicates Start was called on a tap that is already attached.
	ErrTapActive = New("console tap already active")
	// ErrTapDisabled indicates the tap refused to attach in this environment
	// (test binary or explicit opt-out).
	ErrTapDisabled = New("console tap disabled in this environment")
)

// UsageError represents misuse of the public API: calling operations out of
// order, re-initializing, or using a component before setup. These indicate
// programmer error rather than runtime conditions, and should be loud.
//
// Example:
//
//	err := errors.NewUsageError("Append called before Initialize").
//		WithCause(errors.ErrNotReady)
type UsageError struct {
	message string
	cause   error
}

// NewUsageError creates a new UsageError.
func NewUsageError(message string) *UsageError {
	return &UsageError{message: message}
}

// WithCause attaches an underlying sentinel to the error.
func (e *UsageError) WithCause(cause error) *UsageError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *UsageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("usage error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("usage error: %s", e.message)
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *UsageError) Is(target error) bool {
	if _, ok := target.(*UsageError); ok {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsUsage returns true if the error indicates API misuse: a UsageError, or
// one of the lifecycle sentinels that only ever arise from misuse.
//
// Example:
//
//	if errors.IsUsage(err) {
//	    panic(err) // programmer error: fail loudly in development
//	}
func IsUsage(err error) bool {
	if err == nil {
		return false
	}
	var usage *UsageError
	if As(err, &usage) {
		return true
	}
	return Is(err, ErrAlreadyInitialized) || Is(err, ErrNotReady) || Is(err, ErrStoreClosed)
}

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to compile report")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to save report to %s", dir)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
