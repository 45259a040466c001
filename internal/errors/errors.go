package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingSheet     ErrorType = "MISSING_SHEET"
	ErrTypeSentinelNotFound ErrorType = "SENTINEL_NOT_FOUND"
	ErrTypeHeaderGeneration ErrorType = "HEADER_GENERATION"
	ErrTypeOutputWrite      ErrorType = "OUTPUT_WRITE"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewMissingSheetError signals that a required worksheet is absent from a
// source document. Recoverable: the consolidator skips the document.
func NewMissingSheetError(sheet, document string) *AppError {
	return NewAppError(ErrTypeMissingSheet,
		fmt.Sprintf("sheet %q not found", sheet), nil).
		WithContext("document", document)
}

// NewSentinelNotFoundError signals that the category-table marker was not
// found within the bounded scan range of a document.
func NewSentinelNotFoundError(marker string, firstRow, lastRow int, document string) *AppError {
	return NewAppError(ErrTypeSentinelNotFound,
		fmt.Sprintf("marker %q not found in rows %d-%d", marker, firstRow, lastRow), nil).
		WithContext("document", document)
}

// NewHeaderGenerationError wraps any failure while deriving the report
// schema. Always fatal: no report can be produced without a header.
func NewHeaderGenerationError(cause error) *AppError {
	return NewAppError(ErrTypeHeaderGeneration, "failed to derive report header", cause)
}

// NewOutputWriteError wraps a failure while writing the consolidated report.
func NewOutputWriteError(path string, cause error) *AppError {
	return NewAppError(ErrTypeOutputWrite, "failed to write report", cause).
		WithContext("path", path)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType carried by err, or an empty type when err is
// not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsRecoverable reports whether a per-document failure should be skipped
// rather than aborting the whole run. Missing sheets, missing sentinels and
// unreadable workbooks qualify; header derivation and output write failures
// are always fatal.
func IsRecoverable(err error) bool {
	switch TypeOf(err) {
	case ErrTypeMissingSheet, ErrTypeSentinelNotFound, ErrTypeParsing:
		return true
	}
	return false
}
