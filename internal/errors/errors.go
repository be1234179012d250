// Package errors provides a lightweight structured error type (SitepressError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a Sitepress error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryParse      ErrorCategory = "parse"
	CategoryInclude    ErrorCategory = "include"
	CategoryBundle     ErrorCategory = "bundle"
	CategoryPlugin     ErrorCategory = "plugin"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the build
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// SitepressError is a structured error with category, severity, and context
type SitepressError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SitepressError
type ContextFields map[string]any

// Error implements the error interface
func (e *SitepressError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *SitepressError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *SitepressError) WithContext(key string, value any) *SitepressError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the severity of the error
func (e *SitepressError) WithSeverity(severity ErrorSeverity) *SitepressError {
	e.Severity = severity
	return e
}

// New creates a new SitepressError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SitepressError {
	return &SitepressError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new SitepressError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SitepressError {
	return &SitepressError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapError wraps an existing error with error severity
func WrapError(err error, category ErrorCategory, message string) *SitepressError {
	return &SitepressError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// Fatal creates a new fatal-severity SitepressError
func Fatal(category ErrorCategory, message string) *SitepressError {
	return &SitepressError{
		Category: category,
		Severity: SeverityFatal,
		Message:  message,
	}
}

// WrapFatal wraps an existing error with fatal severity
func WrapFatal(err error, category ErrorCategory, message string) *SitepressError {
	return &SitepressError{
		Category: category,
		Severity: SeverityFatal,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := err.(*SitepressError); ok {
		return se.Category == category
	}
	return false
}

// IsFatal checks if an error carries fatal severity
func IsFatal(err error) bool {
	if se, ok := err.(*SitepressError); ok {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SitepressError
func GetCategory(err error) ErrorCategory {
	if se, ok := err.(*SitepressError); ok {
		return se.Category
	}
	return CategoryInternal
}
