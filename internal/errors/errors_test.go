package errors

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskError_Error(t *testing.T) {
	err := NewActionFailedError("bun", stderrors.New("exit status 1"))

	msg := err.Error()
	assert.Contains(t, msg, "ACTION-001: Task 'bun' failed")
	assert.Contains(t, msg, "Operation: Task execution")
	assert.Contains(t, msg, "task: bun")
	assert.Contains(t, msg, "Underlying error: exit status 1")
}

func TestTaskError_Unwrap(t *testing.T) {
	root := stderrors.New("boom")
	err := NewActionFailedError("deno", root)

	assert.True(t, stderrors.Is(err, root))

	var taskErr *TaskError
	require.True(t, stderrors.As(err, &taskErr))
	assert.Equal(t, ErrorCategoryAction, taskErr.Category)
}

func TestTaskError_ContextIsSorted(t *testing.T) {
	err := NewTaskError(ErrorCategoryRun, "999", "msg", "").
		WithContext("zeta", 1).
		WithContext("alpha", 2)

	msg := err.Error()
	assert.Less(t, strings.Index(msg, "alpha"), strings.Index(msg, "zeta"))
}

func TestRegistrationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *TaskError
		code string
	}{
		{"empty id", NewEmptyTaskIDError(), "REGISTRATION-001"},
		{"missing action", NewMissingActionError("x"), "REGISTRATION-002"},
		{"duplicate", NewDuplicateTaskError("x"), "REGISTRATION-003"},
		{"self dependency", NewSelfDependencyError("x"), "REGISTRATION-004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetErrorCode(tt.err))
			assert.True(t, IsUserError(tt.err))
			assert.True(t, IsCategory(tt.err, ErrorCategoryRegistration))
		})
	}
}

func TestNewCommandFailedError_Troubleshooting(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"permission", stderrors.New("open /var/lib/dpkg/lock: permission denied"), "sudo: true"},
		{"cancelled", stderrors.New("context canceled"), "interrupted"},
		{"other", stderrors.New("exit status 2"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCommandFailedError("apt-get", []string{"upgrade", "-y"}, tt.err)
			assert.Equal(t, "apt-get upgrade -y", err.Context["command"])
			if tt.contains == "" {
				assert.Empty(t, err.Troubleshooting)
				return
			}
			require.NotEmpty(t, err.Troubleshooting)
			assert.Contains(t, strings.Join(err.Troubleshooting, "\n"), tt.contains)
		})
	}
}

func TestFormatForCLI(t *testing.T) {
	err := NewRunIncompleteError([]string{"npm", "brew"})

	out := FormatForCLI(err)
	assert.Contains(t, out, "Error [RUN-001]")
	assert.Contains(t, out, "2 task(s) failed: npm, brew")
	assert.Contains(t, out, "How to resolve:")
	assert.Contains(t, out, "1. Re-run with --verbose")

	plain := FormatForCLI(stderrors.New("plain"))
	assert.Equal(t, "\nError: plain\n", plain)
}

func TestDisplayErrorSummary(t *testing.T) {
	err := NewActionFailedError("fnm", stderrors.New("exit status 3"))
	assert.Equal(t, "ACTION-001: Task 'fnm' failed: exit status 3", DisplayErrorSummary(err))

	long := stderrors.New(strings.Repeat("x", 150))
	summary := DisplayErrorSummary(long)
	assert.Len(t, summary, 100)
	assert.True(t, strings.HasSuffix(summary, "..."))
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(NewConfigInvalidError("max_parallel", "must not be negative")))
	assert.False(t, IsUserError(NewActionFailedError("x", nil)))
	assert.False(t, IsUserError(stderrors.New("plain")))
	assert.Equal(t, "UNKNOWN", GetErrorCode(stderrors.New("plain")))
}
