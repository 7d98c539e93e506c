package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryRegistration represents malformed or conflicting task descriptors
	ErrorCategoryRegistration ErrorCategory = "REGISTRATION"
	// ErrorCategoryConfiguration represents invalid configuration files or flags
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
	// ErrorCategoryCondition represents a failing applicability check
	ErrorCategoryCondition ErrorCategory = "CONDITION"
	// ErrorCategoryAction represents a task action that returned an error or panicked
	ErrorCategoryAction ErrorCategory = "ACTION"
	// ErrorCategoryCommand represents an external process that could not run or exited non-zero
	ErrorCategoryCommand ErrorCategory = "COMMAND"
	// ErrorCategoryRun represents a run that finished with failed tasks
	ErrorCategoryRun ErrorCategory = "RUN"
)

// TaskError represents a structured error with context and troubleshooting information
type TaskError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *TaskError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nOperation: %s", e.Operation))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nContext:")
		for _, key := range e.contextKeys() {
			sb.WriteString(fmt.Sprintf("\n  %s: %v", key, e.Context[key]))
		}
	}

	if len(e.Troubleshooting) > 0 {
		sb.WriteString("\nTroubleshooting:")
		for i, step := range e.Troubleshooting {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nUnderlying error: %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *TaskError) Unwrap() error {
	return e.OriginalError
}

// contextKeys returns the context keys in a stable order
func (e *TaskError) contextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for key := range e.Context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NewTaskError creates a new task error with the specified parameters
func NewTaskError(category ErrorCategory, code, message, operation string) *TaskError {
	return &TaskError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *TaskError) WithTroubleshooting(steps ...string) *TaskError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the task error
func (e *TaskError) WithOriginalError(err error) *TaskError {
	e.OriginalError = err
	return e
}

// NewRegistrationError creates a new registration error
func NewRegistrationError(code, message string) *TaskError {
	return NewTaskError(ErrorCategoryRegistration, code, message, "Task registration")
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryConfiguration, code, message, operation)
}

// NewCommandError creates a new external command error
func NewCommandError(code, message, operation string) *TaskError {
	return NewTaskError(ErrorCategoryCommand, code, message, operation)
}
