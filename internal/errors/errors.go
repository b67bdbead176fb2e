// Package errors provides a lightweight structured error type (PackError)
// for category-based classification in the packaging pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a pluginpack error for classification.
type ErrorCategory string

const (
	// User-facing input errors
	CategoryFormatVersion ErrorCategory = "format-version"
	CategoryValidation    ErrorCategory = "validation"
	CategoryRepository    ErrorCategory = "repository"

	// Build pipeline errors
	CategoryStagePlan  ErrorCategory = "stage-plan"
	CategoryAssembly   ErrorCategory = "assembly"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Everything else
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// PackError is a structured error with category, severity, and context.
type PackError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PackError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *PackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *PackError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *PackError) WithContext(key string, value any) *PackError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PackError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *PackError {
	return &PackError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PackError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PackError {
	return &PackError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	if pe, ok := err.(*PackError); ok {
		return pe.Category == category
	}
	return false
}
