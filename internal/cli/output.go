package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dasha/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query or validation failure (engine error, scenarios failed, invalid definitions)
	ExitCommandError = 2 // Command error (bad flags, unreadable paths, broken config)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Text is implemented by payloads with a human-readable rendering.
type Text interface {
	WriteText(w io.Writer) error
}

// OutputFormatter renders command results as text, JSON, YAML or TOML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the envelope for structured output.
type CLIResponse struct {
	Status string    `json:"status" yaml:"status" toml:"status"`                            // "ok" or "error"
	Data   any       `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`    // success payload
	Error  *CLIError `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code" yaml:"code" toml:"code"`                                     // engine code or "E001"-style CLI code
	Message string `json:"message" yaml:"message" toml:"message"`                            // human-readable message
	System  string `json:"system,omitempty" yaml:"system,omitempty" toml:"system,omitempty"` // period system, if any
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "text" {
		if t, ok := data.(Text); ok {
			return t.WriteText(f.Writer)
		}
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return f.encode(CLIResponse{Status: "ok", Data: data})
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message, system string) error {
	if f.Format == "text" {
		if system != "" {
			_, err := fmt.Fprintf(f.Writer, "Error [%s] %s: %s\n", code, system, message)
			return err
		}
		_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
		return err
	}
	return f.encode(CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: code, Message: message, System: system},
	})
}

// Fail reports err and returns the matching ExitError. Engine errors keep
// their code; anything else is reported as a command error.
func (f *OutputFormatter) Fail(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		_ = f.Error(string(de.Code), de.Message, de.System)
		return WrapExitError(ExitFailure, string(de.Code), err)
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		_ = f.Error(ErrCodeCommand, ee.Error(), "")
		return ee
	}
	_ = f.Error(ErrCodeCommand, err.Error(), "")
	return WrapExitError(ExitCommandError, "command failed", err)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(f.Writer).Encode(resp)
	default:
		return fmt.Errorf("unknown format %q", f.Format)
	}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// CLI error codes for failures outside the engine.
const (
	ErrCodeCommand    = "E001" // generic command failure
	ErrCodeNotFound   = "E002" // path not found
	ErrCodeValidation = "E003" // invalid system definitions
	ErrCodeTestFailed = "E004" // scenarios failed
)
