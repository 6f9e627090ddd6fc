package cmerrors

import (
	"fmt"
)

// ErrorType represents the type of error that occurred
type ErrorType int

const (
	// ErrorTypeUnknown is for unknown errors
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeConfiguration is when no cm tool is configured
	ErrorTypeConfiguration
	// ErrorTypeValidation is when the cm tool exists in configuration but cannot run
	ErrorTypeValidation
	// ErrorTypeTransientExecution is for a single failed attempt of a cm command
	ErrorTypeTransientExecution
	// ErrorTypeExhaustedRetries is when every attempt of a cm command failed
	ErrorTypeExhaustedRetries
	// ErrorTypeLocalIO is for local file errors, such as writing a temp file
	ErrorTypeLocalIO
)

// String returns a string representation of the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeConfiguration:
		return "Configuration"
	case ErrorTypeValidation:
		return "Validation"
	case ErrorTypeTransientExecution:
		return "TransientExecution"
	case ErrorTypeExhaustedRetries:
		return "ExhaustedRetries"
	case ErrorTypeLocalIO:
		return "LocalIO"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is checks; matching is by type only.
var (
	ErrConfiguration      = &CmError{Type: ErrorTypeConfiguration}
	ErrValidation         = &CmError{Type: ErrorTypeValidation}
	ErrTransientExecution = &CmError{Type: ErrorTypeTransientExecution}
	ErrExhaustedRetries   = &CmError{Type: ErrorTypeExhaustedRetries}
	ErrLocalIO            = &CmError{Type: ErrorTypeLocalIO}
)

// CmError represents an error raised while running the cm client
type CmError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *CmError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap allows errors.Is and errors.As to work
func (e *CmError) Unwrap() error {
	return e.Err
}

// Is allows comparison with error types
func (e *CmError) Is(target error) bool {
	t, ok := target.(*CmError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewCmError creates a new CmError
func NewCmError(errType ErrorType, message string, err error) *CmError {
	return &CmError{
		Type:    errType,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *CmError) WithContext(key string, value interface{}) *CmError {
	e.Context[key] = value
	return e
}

// GetContext retrieves context information from the error
func (e *CmError) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// NewConfigurationError creates the error returned when no tool is configured
func NewConfigurationError(description string) *CmError {
	return NewCmError(ErrorTypeConfiguration, description, nil)
}

// NewValidationError creates a tool validation error. exitCode is -1 when
// the process never started.
func NewValidationError(message, cmPath string, exitCode int, output string, err error) *CmError {
	return NewCmError(ErrorTypeValidation, message, err).
		WithContext("cm_path", cmPath).
		WithContext("exit_code", exitCode).
		WithContext("output", output)
}

// NewTransientExecutionError creates an error for one failed attempt.
// command must already be masked.
func NewTransientExecutionError(command string, attempt, exitCode int, err error) *CmError {
	msg := fmt.Sprintf("cm command '%s' failed on attempt %d", command, attempt)
	if err == nil {
		msg = fmt.Sprintf("%s with exit code %d", msg, exitCode)
	}
	return NewCmError(ErrorTypeTransientExecution, msg, err).
		WithContext("command", command).
		WithContext("attempt", attempt).
		WithContext("exit_code", exitCode)
}

// NewExhaustedRetriesError creates the fatal error after the last attempt.
// command must already be masked.
func NewExhaustedRetriesError(command string, attempts int, last error) *CmError {
	return NewCmError(ErrorTypeExhaustedRetries,
		fmt.Sprintf("The cm command '%s' failed after %d retries", command, attempts), last).
		WithContext("command", command).
		WithContext("attempts", attempts)
}

// NewInterruptedError creates the error returned when the context is done
// while waiting to retry. It counts as exhausted retries; err is the
// context error.
func NewInterruptedError(command string, attempts int, err error) *CmError {
	return NewCmError(ErrorTypeExhaustedRetries,
		fmt.Sprintf("The cm command '%s' was interrupted after %d attempts", command, attempts), err).
		WithContext("command", command).
		WithContext("attempts", attempts).
		WithContext("interrupted", true)
}

// NewLocalIOError creates an I/O error
func NewLocalIOError(operation string, err error) *CmError {
	return NewCmError(ErrorTypeLocalIO,
		fmt.Sprintf("I/O error during %s", operation), err).
		WithContext("operation", operation)
}
