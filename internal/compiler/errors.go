package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Compile error codes (E100-E199).
const (
	ErrMissingField      = "E101" // required field absent
	ErrFloatForbidden    = "E102" // non-integer number
	ErrInvalidValue      = "E103" // wrong kind or unknown enum value
	ErrInvalidDefinition = "E104" // definition rejected by the system model
	ErrCUE               = "E105" // CUE evaluation error
)

// CompileError is a compilation error with source position.
type CompileError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos

	// Err is the underlying model error for ErrInvalidDefinition.
	Err error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, field string) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Code: ErrCUE, Field: field, Message: err.Error()}
	}
	first := errs[0]
	ce := &CompileError{Code: ErrCUE, Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
