package errors

import (
	"fmt"
	"strings"
)

// Common error codes
const (
	// Registration error codes
	CodeEmptyTaskID     = "001"
	CodeMissingAction   = "002"
	CodeDuplicateTaskID = "003"
	CodeSelfDependency  = "004"

	// Configuration error codes
	CodeConfigRead    = "001"
	CodeConfigParse   = "002"
	CodeConfigInvalid = "003"

	// Execution error codes
	CodeConditionFailed = "001"
	CodeActionFailed    = "001"
	CodeActionPanicked  = "002"

	// Command error codes
	CodeCommandNotFound = "001"
	CodeCommandFailed   = "002"

	// Run error codes
	CodeRunIncomplete = "001"
)

// NewEmptyTaskIDError creates an error for a task registered without an id
func NewEmptyTaskIDError() *TaskError {
	return NewRegistrationError(CodeEmptyTaskID, "Task ID cannot be empty").
		WithTroubleshooting("Give every task a unique, non-empty id")
}

// NewMissingActionError creates an error for a task registered without an action
func NewMissingActionError(taskID string) *TaskError {
	return NewRegistrationError(CodeMissingAction,
		fmt.Sprintf("Task '%s' has no action", taskID)).
		WithContext("task", taskID)
}

// NewDuplicateTaskError creates an error for a task id registered twice
func NewDuplicateTaskError(taskID string) *TaskError {
	return NewRegistrationError(CodeDuplicateTaskID,
		fmt.Sprintf("Task '%s' is already registered", taskID)).
		WithContext("task", taskID).
		WithTroubleshooting(
			"Task ids must be unique within a run",
			"Check the tasks section of your config file for an id that shadows a built-in task",
		)
}

// NewSelfDependencyError creates an error for a task that depends on itself
func NewSelfDependencyError(taskID string) *TaskError {
	return NewRegistrationError(CodeSelfDependency,
		fmt.Sprintf("Task '%s' depends on itself", taskID)).
		WithContext("task", taskID)
}

// NewConfigReadError creates an error for an unreadable config file
func NewConfigReadError(path string, originalErr error) *TaskError {
	return NewConfigurationError(CodeConfigRead,
		fmt.Sprintf("Failed to read config file '%s'", path),
		"Config loading").
		WithContext("path", path).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Verify the path passed to --config exists and is readable",
		)
}

// NewConfigParseError creates an error for a config file that is not valid YAML
func NewConfigParseError(path string, originalErr error) *TaskError {
	return NewConfigurationError(CodeConfigParse,
		fmt.Sprintf("Failed to parse config file '%s'", path),
		"Config loading").
		WithContext("path", path).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check the file for YAML syntax errors",
			"Task commands must be lists, e.g. command: [pipx, upgrade-all]",
		)
}

// NewConfigInvalidError creates an error for a config value that fails validation
func NewConfigInvalidError(field, reason string) *TaskError {
	return NewConfigurationError(CodeConfigInvalid,
		fmt.Sprintf("Invalid value for %s: %s", field, reason),
		"Config validation").
		WithContext("field", field)
}

// NewConditionError creates an error for a condition check that could not be evaluated
func NewConditionError(taskID string, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryCondition, CodeConditionFailed,
		fmt.Sprintf("Could not decide whether task '%s' applies", taskID),
		"Condition evaluation").
		WithContext("task", taskID).
		WithOriginalError(originalErr)
}

// NewActionFailedError creates an error for a task action that returned an error
func NewActionFailedError(taskID string, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryAction, CodeActionFailed,
		fmt.Sprintf("Task '%s' failed", taskID),
		"Task execution").
		WithContext("task", taskID).
		WithOriginalError(originalErr)
}

// NewActionPanickedError creates an error for a task action that panicked
func NewActionPanickedError(taskID string, recovered interface{}) *TaskError {
	return NewTaskError(ErrorCategoryAction, CodeActionPanicked,
		fmt.Sprintf("Task '%s' panicked: %v", taskID, recovered),
		"Task execution").
		WithContext("task", taskID)
}

// NewCommandNotFoundError creates an error for a binary missing from PATH
func NewCommandNotFoundError(name string, originalErr error) *TaskError {
	return NewCommandError(CodeCommandNotFound,
		fmt.Sprintf("Command '%s' not found", name),
		"Command lookup").
		WithContext("command", name).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			fmt.Sprintf("Install %s or make sure it is on your PATH", name),
		)
}

// NewCommandFailedError creates an error for a command that exited unsuccessfully
func NewCommandFailedError(name string, args []string, originalErr error) *TaskError {
	commandLine := strings.TrimSpace(name + " " + strings.Join(args, " "))
	err := NewCommandError(CodeCommandFailed,
		fmt.Sprintf("Command '%s' failed", commandLine),
		"Command execution").
		WithContext("command", commandLine).
		WithOriginalError(originalErr)

	if originalErr != nil {
		errStr := strings.ToLower(originalErr.Error())
		if strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "not permitted") {
			err = err.WithTroubleshooting(
				"Run the command by hand to see whether it needs elevated privileges",
				"Mark the task with sudo: true in your config file",
			)
		} else if strings.Contains(errStr, "signal: killed") || strings.Contains(errStr, "context canceled") {
			err = err.WithTroubleshooting(
				"The command was interrupted before it finished",
			)
		}
	}

	return err
}

// NewRunIncompleteError creates an error summarising the failed tasks of a run
func NewRunIncompleteError(failed []string) *TaskError {
	return NewTaskError(ErrorCategoryRun, CodeRunIncomplete,
		fmt.Sprintf("%d task(s) failed: %s", len(failed), strings.Join(failed, ", ")),
		"Maintenance run").
		WithContext("failed", len(failed)).
		WithTroubleshooting(
			"Re-run with --verbose to see each command's output",
			"Use --only <id> to retry a single task",
		)
}

// IsCategory reports whether err is a TaskError of the given category
func IsCategory(err error, category ErrorCategory) bool {
	if taskErr, ok := err.(*TaskError); ok {
		return taskErr.Category == category
	}
	return false
}
