// Package errors provides structured error types for the prominence toolchain.
//
// Error codes follow the five kinds of failure the core distinguishes:
// missing input, corrupt input, algorithmic failure, invariant violation,
// and internal bugs. Only InvariantViolation is treated as fatal by the
// driver; the rest are locally masked (skip a tile, mark a saddle bad).
//
//	err := errors.New(errors.CodeInputCorrupt, "tile %d,%d: bad sample count", x, y)
//	if errors.Is(err, errors.CodeInvariantViolation) {
//	    // abort the merge
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the five failure kinds the core distinguishes.
const (
	// CodeInputMissing marks a tile file or coordinate-system line that
	// could not be found. Not fatal to the region; the tile task returns
	// false and the driver skips it.
	CodeInputMissing Code = "INPUT_MISSING"

	// CodeInputCorrupt marks malformed input: wrong sample count,
	// unparseable coordinate system, malformed .dvt record.
	CodeInputCorrupt Code = "INPUT_CORRUPT"

	// CodeAlgorithmicFailure marks a steepest-ascent walk that could not
	// find a higher neighbor, or any other core-algorithm dead end. The
	// offending saddle is marked ERROR and the rest of the tile proceeds.
	CodeAlgorithmicFailure Code = "ALGORITHMIC_FAILURE"

	// CodeInvariantViolation marks a contract violation between
	// components — incompatible coordinate systems on merge, a
	// deletion-offset inconsistency. Fatal: propagated up, never masked.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodeInternal marks a bug in this code, not in the input.
	CodeInternal Code = "INTERNAL"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err has the given error code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Fatal reports whether err should abort the whole region/merge job rather
// than being locally masked, per the core's error handling policy.
func Fatal(err error) bool {
	return GetCode(err) == CodeInvariantViolation
}
