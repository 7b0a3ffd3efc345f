package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an engine error so callers can react to the failure class
// without parsing message text.
type Code string

const (
	// CodeSchema indicates a malformed column definition: duplicate or empty
	// names, missing or non-positive fixed-array dimensions, or an empty
	// column set where one was not explicitly permitted.
	CodeSchema Code = "SCHEMA"

	// CodeAllocation indicates that space reservation failed, e.g. the
	// requested size exceeds the available space on the storage medium.
	CodeAllocation Code = "ALLOCATION"

	// CodeShapeMismatch indicates a cell write whose shape or element type
	// does not match the column's declaration.
	CodeShapeMismatch Code = "SHAPE_MISMATCH"

	// CodeBulkShape indicates a bulk column write whose rows do not share a
	// single shape, or whose row count does not cover the whole column.
	CodeBulkShape Code = "BULK_SHAPE"

	// CodeNotFound indicates an unknown column name.
	CodeNotFound Code = "NOT_FOUND"

	// CodeIndex indicates a row index at or beyond the current row count.
	CodeIndex Code = "INDEX"

	// CodeMissingColumn indicates a row commit that left a declared column
	// unset.
	CodeMissingColumn Code = "MISSING_COLUMN"

	// CodeUseAfterClose indicates an operation on a closed table or on an
	// accessor bound to one.
	CodeUseAfterClose Code = "USE_AFTER_CLOSE"

	// CodeStorage wraps an underlying I/O failure from the storage medium.
	CodeStorage Code = "STORAGE"
)

// Error is a structured engine error carrying a failure class, the operation
// that failed and an optional underlying cause.
type Error struct {
	Code   Code   // Failure class, one of the Code constants
	Op     string // Operation that was being performed, e.g. "table.AddRows"
	Detail string // Human-readable description of this instance
	Cause  error  // Underlying error, if any
}

// New creates an engine error with the given code and detail.
func New(code Code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

// Newf creates an engine error with a formatted detail message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and operation to an underlying error. If err is
// already an *Error its code is preserved and only the missing context is
// filled in. Returns nil when err is nil.
func Wrap(err error, code Code, op string) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		return err
	}

	return &Error{Code: code, Op: op, Detail: err.Error(), Cause: err}
}

// Error implements the error interface.
// Format: [CODE] detail (op: operation) caused by: underlying error
func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Detail)
	if e.Op != "" {
		fmt.Fprintf(&b, " (op: %s)", e.Op)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " caused by: %v", e.Cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As
// traversal across the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the failure class from an error chain. Returns the empty
// code when err is nil or carries no *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err or any error it wraps carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
