package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/stepgraph/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Records failed validation, decoding or schema checks
	ExitCommandError = 2 // Command error (invalid paths, database not found, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeInputInvalid  = "E002" // Raw input document rejected
	ErrCodeUnits         = "E003" // Unit normalization failed
	ErrCodeDecodeFailed  = "E004" // Record line could not be decoded
	ErrCodeNotFound      = "E005" // Path or record not found
	ErrCodeDatabase      = "E006" // Archive error
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeSchemaVersion = "E008" // Unsupported schema major version
	ErrCodeInvalidGraph  = "E009" // Record reports validation errors
	ErrCodeNonConforming = "E010" // Record does not match the wire schema
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
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	color.New(color.FgRed).Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports an error and returns it as an ExitError with the given exit code.
func (f *OutputFormatter) Fail(exit int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, msg, nil)
	return WrapExitError(exit, message, err)
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

// Report writes a validation report in text form: errors in red, warnings
// in yellow, one issue per line, indented under a status line.
func (f *OutputFormatter) Report(label string, v ir.ValidationInfo) {
	if v.IsValid() {
		color.New(color.FgGreen).Fprintf(f.Writer, "✓ %s valid", label)
	} else {
		color.New(color.FgRed).Fprintf(f.Writer, "✗ %s invalid", label)
	}
	fmt.Fprintf(f.Writer, " (%d nodes, %d edges, %d errors, %d warnings)\n",
		v.NodeCount, v.EdgeCount, len(v.Errors), len(v.Warnings))

	red := color.New(color.FgRed)
	for _, e := range v.Errors {
		red.Fprintf(f.Writer, "  %s\n", e)
	}
	yellow := color.New(color.FgYellow)
	for _, w := range v.Warnings {
		yellow.Fprintf(f.Writer, "  %s\n", w)
	}
}

// ValidationReport is the JSON form of one record's validation block.
type ValidationReport struct {
	ModelID   string   `json:"model_id"`
	Digest    string   `json:"digest,omitempty"`
	IsValid   bool     `json:"is_valid"`
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

func newValidationReport(x *ir.IR, digest string) ValidationReport {
	return ValidationReport{
		ModelID:   x.ModelID,
		Digest:    digest,
		IsValid:   x.Validation.IsValid(),
		NodeCount: x.Validation.NodeCount,
		EdgeCount: x.Validation.EdgeCount,
		Errors:    x.Validation.Errors,
		Warnings:  x.Validation.Warnings,
	}
}
