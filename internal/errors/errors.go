// Package errors implements the three error classes from the pipeline's
// error-handling design: transient per-file errors, component-level
// fallback errors, and fatal errors surfaced to the caller.
package errors

import (
	"fmt"
	"time"
)

// ErrorType categorizes an error for logging and recovery decisions.
type ErrorType string

const (
	ErrorTypeEnumerate ErrorType = "enumerate"
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeIndex     ErrorType = "index"
	ErrorTypeSession   ErrorType = "session"

	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// FileError is a transient, per-file error: permission denied, a file
// that vanished after enumeration, or a parse failure. Callers log it
// once (summarized) and omit the file rather than abort the pipeline.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying permission issues.
func NewFileError(op, path string, err error) *FileError {
	errType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errType = ErrorTypePermission
	}
	return &FileError{
		Type:       errType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error { return e.Underlying }

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return fmt.Sprint(err) == "permission denied" ||
		fmt.Sprint(err) == "access denied"
}

// ParseError represents a best-effort extraction failure for a single
// file in the semantic index. It never aborts the scan.
type ParseError struct {
	Path       string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error.
func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.Path, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// ComponentError represents a component-level failure: a version-control
// subprocess failure, a find-binary failure, index corruption, or session
// corruption. The component falls back to the next strategy rather than
// propagating the error to the user.
type ComponentError struct {
	Component  string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewComponentError creates a new component-level error.
func NewComponentError(component, op string, err error) *ComponentError {
	return &ComponentError{Component: component, Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Component, e.Operation, e.Underlying)
}

func (e *ComponentError) Unwrap() error { return e.Underlying }

// ConfigError represents an invalid CLI argument or configuration value.
// It is fatal: the caller surfaces it and exits non-zero.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates multiple non-fatal errors, e.g. per-file
// enumeration failures collected across a scan.
type MultiError struct {
	Errors []error
}

// NewMultiError creates a multi-error, dropping nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
	}
}

func (e *MultiError) Unwrap() []error { return e.Errors }
