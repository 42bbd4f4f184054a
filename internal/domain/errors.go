package domain

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine failures.
type ErrorCode string

const (
	// CodeInvalidSystemDefinition indicates a bad ruler table or rule set.
	// Raised at registration and fatal to startup.
	CodeInvalidSystemDefinition ErrorCode = "INVALID_SYSTEM_DEFINITION"

	// CodeUnknownSystem indicates a system id that was never registered.
	CodeUnknownSystem ErrorCode = "UNKNOWN_SYSTEM"

	// CodeInvalidHorizon indicates a non-positive or absurdly large horizon.
	CodeInvalidHorizon ErrorCode = "INVALID_HORIZON"

	// CodeInvalidDepth indicates a negative locate depth.
	CodeInvalidDepth ErrorCode = "INVALID_DEPTH"

	// CodeInvalidReference indicates a reference value the balance rule cannot map.
	CodeInvalidReference ErrorCode = "INVALID_REFERENCE"

	// CodePointOutOfComputableRange indicates a query point that would need
	// more ruler cycles than the sanity bound allows.
	CodePointOutOfComputableRange ErrorCode = "POINT_OUT_OF_COMPUTABLE_RANGE"

	// CodeArithmeticOverflow indicates a base-unit overflow of int64.
	CodeArithmeticOverflow ErrorCode = "ARITHMETIC_OVERFLOW"
)

// Error is the typed failure returned by every engine operation.
//
// No error is retried internally. Callers branch on Code, either with
// errors.Is against the exported sentinels or with IsCode.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// System identifies the period system involved, if any.
	System string

	// Details contains additional context.
	Details map[string]string
}

// Sentinels for errors.Is matching. Only Code is compared.
var (
	ErrInvalidSystemDefinition   = &Error{Code: CodeInvalidSystemDefinition}
	ErrUnknownSystem             = &Error{Code: CodeUnknownSystem}
	ErrInvalidHorizon            = &Error{Code: CodeInvalidHorizon}
	ErrInvalidDepth              = &Error{Code: CodeInvalidDepth}
	ErrInvalidReference          = &Error{Code: CodeInvalidReference}
	ErrPointOutOfComputableRange = &Error{Code: CodePointOutOfComputableRange}
	ErrArithmeticOverflow        = &Error{Code: CodeArithmeticOverflow}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "failed"
	}
	if e.System != "" {
		return fmt.Sprintf("%s: %s (system=%s)", e.Code, msg, e.System)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithSystem returns a copy of e tagged with the given system id.
func (e *Error) WithSystem(system string) *Error {
	cp := *e
	cp.System = system
	return &cp
}

// NewError creates an Error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code from err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsOverflow reports whether err is an arithmetic overflow.
func IsOverflow(err error) bool {
	return IsCode(err, CodeArithmeticOverflow)
}

func overflow(op string, a, b int64) *Error {
	return &Error{
		Code:    CodeArithmeticOverflow,
		Message: fmt.Sprintf("%s overflows int64 base units", op),
		Details: map[string]string{
			"a": fmt.Sprintf("%d", a),
			"b": fmt.Sprintf("%d", b),
		},
	}
}
