package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Recipe processing errors
	ErrValidation         ErrorCode = "VALIDATION"
	ErrActionExecution    ErrorCode = "ACTION_EXECUTION"
	ErrStoreCorruption    ErrorCode = "STORE_CORRUPTION"
	ErrCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
)

// RecipeError represents a structured error with code and details
type RecipeError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RecipeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RecipeError) Unwrap() error {
	return e.Wrapped
}

// Is matches any RecipeError carrying the same code
func (e *RecipeError) Is(target error) bool {
	var targetErr *RecipeError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RecipeError with the given code and message
func New(code ErrorCode, message string) *RecipeError {
	return &RecipeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RecipeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RecipeError {
	return &RecipeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RecipeError
func Wrap(err error, code ErrorCode, message string) *RecipeError {
	if err == nil {
		return nil
	}
	return &RecipeError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RecipeError {
	if err == nil {
		return nil
	}
	return &RecipeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RecipeError) WithDetail(key string, value interface{}) *RecipeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its chain
func IsErrorCode(err error, code ErrorCode) bool {
	return errors.Is(err, &RecipeError{Code: code})
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RecipeError
func GetErrorCode(err error) ErrorCode {
	var recipeErr *RecipeError
	if errors.As(err, &recipeErr) {
		return recipeErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RecipeError
func GetErrorDetails(err error) map[string]interface{} {
	var recipeErr *RecipeError
	if errors.As(err, &recipeErr) {
		return recipeErr.Details
	}
	return nil
}

// IsFatal reports whether err must abort the whole run rather than a single package.
func IsFatal(err error) bool {
	return IsErrorCode(err, ErrStoreCorruption) || IsErrorCode(err, ErrConfigLoad) || IsErrorCode(err, ErrConfigValid)
}
