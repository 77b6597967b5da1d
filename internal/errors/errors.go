package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a product mismatch between algorithms.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError encapsulates a multiplication failure while preserving the
// original cause.
type CalculationError struct {
	// Algorithm is the name of the multiplier that failed.
	Algorithm string
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the error message from the underlying cause.
func (e CalculationError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
}

// Unwrap returns the original wrapped error.
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError represents a calculation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// ParseError reports a malformed polynomial expression.
type ParseError struct {
	// Input is the expression being parsed.
	Input string
	// Offset is the byte offset at which parsing failed.
	Offset int
	// Message explains what was expected.
	Message string
}

// Error returns a formatted message pointing at the failing offset.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d in %q: %s", e.Offset, e.Input, e.Message)
}

// ExponentOverflowError reports that the exponents of a product cannot be
// packed into a machine word field. Cause is the codec sentinel so callers can
// match it with errors.Is.
type ExponentOverflowError struct {
	// Field is the packed field index (the degree field comes first for
	// graded orderings).
	Field int
	// Bound is the largest exponent sum observed before the overflow, or the
	// largest field value when the sum itself fits but needs a full word.
	Bound uint64
	// Cause is the underlying sentinel error.
	Cause error
}

// Error returns a formatted message describing the overflowing field.
func (e *ExponentOverflowError) Error() string {
	return fmt.Sprintf("exponent overflow in field %d (bound %d): %v", e.Field, e.Bound, e.Cause)
}

// Unwrap returns the codec sentinel.
func (e *ExponentOverflowError) Unwrap() error { return e.Cause }

// InvariantError reports an internal invariant violation detected inside a
// worker. It is a programming error, never a user error.
type InvariantError struct {
	// Division is the index of the division whose worker failed, or -1.
	Division int
	// Cause is the recovered panic value turned into an error.
	Cause error
}

// Error returns a formatted message naming the division.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in division %d: %v", e.Division, e.Cause)
}

// Unwrap returns the recovered cause.
func (e *InvariantError) Unwrap() error { return e.Cause }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ColorProvider supplies the escape sequences used when reporting errors.
// Implementations live in the presentation layer.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleCalculationError prints a failed multiplication and maps it to an exit code.
//
// Parameters:
//   - err: The error returned by the multiplier.
//   - duration: The elapsed time before the failure (0 when unknown).
//   - out: The writer for the report.
//   - colors: Escape sequences for the report.
//
// Returns:
//   - int: The exit code matching the error class.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s", duration)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sThe multiplication timed out%s.%s\n", colors.Yellow(), suffix, colors.Reset())
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sThe multiplication was canceled%s.%s\n", colors.Yellow(), suffix, colors.Reset())
		return ExitErrorCanceled
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(out, "%sConfiguration error: %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorConfig
	}
	fmt.Fprintf(out, "%sThe multiplication failed%s: %v%s\n", colors.Red(), suffix, err, colors.Reset())
	return ExitErrorGeneric
}
