package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/layout"
	"github.com/roach88/sigil/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Data failure (validation findings, failed scenarios, codec errors)
	ExitCommandError = 2 // Command error (bad paths, unreadable input, malformed flags)
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E201", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// Codec operation error codes (E200-E229). The loader owns E001-E007 and
// the schema validator owns E100-E129.
const (
	ErrCodeUnknownRecord         = "E201" // record name not in the schema
	ErrCodeDiscriminatorMismatch = "E202" // buffer prefix does not match the record
	ErrCodeRecordNotFound        = "E203" // no record matches the buffer prefix
	ErrCodeDecode                = "E204" // buffer does not parse as the record body
	ErrCodeValue                 = "E205" // value does not fit the record type
	ErrCodeBadInput              = "E206" // input is not valid JSON or hex
)

// codecErrorCode maps a codec error to its CLI error code.
func codecErrorCode(err error) string {
	switch {
	case codec.IsUnknownRecord(err):
		return ErrCodeUnknownRecord
	case codec.IsDiscriminatorMismatch(err):
		return ErrCodeDiscriminatorMismatch
	case codec.IsRecordNotFound(err):
		return ErrCodeRecordNotFound
	case layout.IsDecodeError(err):
		return ErrCodeDecode
	case layout.IsValueError(err), schema.IsSchemaError(err):
		return ErrCodeValue
	default:
		return ErrCodeGeneric
	}
}

// failCodec reports a codec error and returns an ExitError carrying the
// data-failure exit code.
func failCodec(formatter *OutputFormatter, err error) error {
	code := codecErrorCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, err.Error()))
}
