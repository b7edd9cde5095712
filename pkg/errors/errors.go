// Package errors provides custom error types for the oasforge system.
// These errors enable programmatic error checking and carry enough
// source context (file, line, excerpt) to locate offending annotations.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the oasforge system
var (
	// ErrNoRootFound indicates that no input document carried the
	// top-level 'openapi' and 'info' keys
	ErrNoRootFound = errors.New("no root OpenAPI definition found: one definition must contain 'openapi' and 'info' fields")

	// ErrMultipleRootsFound indicates that more than one input document
	// carried the top-level 'openapi' and 'info' keys
	ErrMultipleRootsFound = errors.New("multiple root OpenAPI definitions found: only one definition can be the root")

	// ErrNoFilesFound indicates that no files existed under the
	// configured input directories and includes
	ErrNoFilesFound = errors.New("no files found in the specified directories")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyDocument indicates that a snippet parsed to no document at
	// all (empty or comment-only content)
	ErrEmptyDocument = errors.New("document is empty")
)

// ParseError represents a failure to parse a source file.
type ParseError struct {
	Format  string // "go", "yaml", "json"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// SourceMapError represents a structural parse failure mapped back to
// the annotation that produced the offending snippet. Line is the
// 1-based line of the annotation in File; Context holds the first
// lines of the snippet, each prefixed with its absolute line number.
type SourceMapError struct {
	File    string
	Line    int
	Context string
	Err     error
}

// Error implements the error interface
func (e *SourceMapError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "YAML error in %s:%d: %v", e.File, e.Line, e.Err)
	if e.Context != "" {
		b.WriteString("\nContext:\n")
		b.WriteString(e.Context)
	}
	return b.String()
}

// Unwrap implements errors.Unwrap
func (e *SourceMapError) Unwrap() error {
	return e.Err
}

// NewSourceMapError creates a SourceMapError, building the context
// excerpt from the snippet content. The excerpt covers the first
// contextLines lines, numbered from the snippet's absolute line.
func NewSourceMapError(file string, line int, content string, contextLines int, err error) *SourceMapError {
	var b strings.Builder
	for i, l := range strings.Split(content, "\n") {
		if i >= contextLines {
			break
		}
		fmt.Fprintf(&b, "  %02d | %s\n", line+i, l)
	}
	return &SourceMapError{
		File:    file,
		Line:    line,
		Context: strings.TrimRight(b.String(), "\n"),
		Err:     err,
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "walk"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNoRootFound checks if an error is a missing-root error
func IsNoRootFound(err error) bool {
	return errors.Is(err, ErrNoRootFound)
}

// IsMultipleRootsFound checks if an error is a multiple-roots error
func IsMultipleRootsFound(err error) bool {
	return errors.Is(err, ErrMultipleRootsFound)
}

// IsNoFilesFound checks if an error is a no-files-found error
func IsNoFilesFound(err error) bool {
	return errors.Is(err, ErrNoFilesFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
