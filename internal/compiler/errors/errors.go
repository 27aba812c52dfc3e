// Package errors holds the diagnostics roundtrip-gen reports: front-end
// (SYN0xx) and generation (GEN6xx) errors tied to a source location, printed
// for the terminal or as JSON for editors and scripts.
package errors

import (
	"bytes"
	"encoding/json"

	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// ErrorCode represents a unique diagnostic code
type ErrorCode string

// ErrorCategory tells which stage raised a diagnostic
type ErrorCategory string

const (
	// CategorySyntax represents front-end errors (SYN001-099)
	CategorySyntax ErrorCategory = "syntax"
	// CategoryCodeGen represents code generation errors (GEN600-699)
	CategoryCodeGen ErrorCategory = "codegen"
)

// CompilerError is one diagnostic. Any diagnostic stops generation for the
// input it belongs to; there are no warnings.
type CompilerError struct {
	// Code is the unique error code (e.g., "GEN605", "SYN001")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type     string               `json:"type"`
	Category ErrorCategory        `json:"category"`
	Message  string               `json:"message"`
	Location shape.SourceLocation `json:"location"`
	// Source is the text of the line at Location, once the input is known
	Source     string   `json:"source,omitempty"`
	Expected   string   `json:"expected,omitempty"`
	Actual     string   `json:"actual,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// WithFile sets the input the diagnostic belongs to
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.Location.File = file
	return e
}

// WithSource attaches the line at the diagnostic's location from src, the
// full content of its input.
func (e *CompilerError) WithSource(src []byte) *CompilerError {
	if e.Location.Line < 1 {
		return e
	}
	lines := bytes.Split(src, []byte("\n"))
	if e.Location.Line > len(lines) {
		return e
	}
	e.Source = string(bytes.TrimRight(lines[e.Location.Line-1], "\r"))
	return e
}

// WithExpected sets the expected form
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the form that was found
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets example fixes for the error
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList is a collection of compiler errors
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// Err returns the list as an error, or nil when it is empty.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	if el == nil {
		el = ErrorList{}
	}
	out, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// newError creates a new CompilerError with the given parameters
func newError(code ErrorCode, typ string, category ErrorCategory, message string, loc shape.SourceLocation) *CompilerError {
	return &CompilerError{
		Code:     code,
		Type:     typ,
		Category: category,
		Message:  message,
		Location: loc,
	}
}
