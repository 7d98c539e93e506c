package maintenance

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/logger"
	"github.com/sirupsen/logrus"
)

// Runner executes external commands on behalf of a task
type Runner interface {
	// Run executes a command as the current user
	Run(ctx context.Context, taskID, name string, args ...string) error
	// RunPrivileged executes a command with elevated privileges
	RunPrivileged(ctx context.Context, taskID, name string, args ...string) error
	// LookPath reports where a binary lives on PATH
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec and streams their output line by line
// into the operational log, tagged with the task id.
type ExecRunner struct {
	// Sudo prefixes privileged commands; empty when already root
	Sudo string

	// Stdin is attached to privileged commands so sudo can prompt
	Stdin io.Reader

	// WaitDelay bounds how long output is drained after a cancelled command is killed
	WaitDelay time.Duration
}

// NewExecRunner creates a runner for the current process
func NewExecRunner() *ExecRunner {
	sudo := "sudo"
	if os.Geteuid() == 0 {
		sudo = ""
	}

	return &ExecRunner{
		Sudo:      sudo,
		Stdin:     os.Stdin,
		WaitDelay: 5 * time.Second,
	}
}

// Run executes a command as the current user
func (r *ExecRunner) Run(ctx context.Context, taskID, name string, args ...string) error {
	return r.run(ctx, taskID, nil, name, args)
}

// RunPrivileged executes a command through sudo unless already root. Stdin
// stays attached so a password prompt can be answered.
func (r *ExecRunner) RunPrivileged(ctx context.Context, taskID, name string, args ...string) error {
	if r.Sudo != "" {
		args = append([]string{name}, args...)
		name = r.Sudo
	}
	return r.run(ctx, taskID, r.Stdin, name, args)
}

// LookPath reports where a binary lives on PATH
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) run(ctx context.Context, taskID string, stdin io.Reader, name string, args []string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return apperrors.NewCommandNotFoundError(name, err)
	}

	logger.User.Infof("[%s] $ %s", taskID, strings.Join(append([]string{name}, args...), " "))

	stdout := logger.Op.TaskWriter(taskID, logrus.InfoLevel)
	defer stdout.Close()
	stderr := logger.Op.TaskWriter(taskID, logrus.WarnLevel)
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Stdin = stdin
	cmd.WaitDelay = r.WaitDelay

	start := time.Now()
	err = cmd.Run()

	fields := map[string]interface{}{
		"task":     taskID,
		"command":  name,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		logger.Op.WithFields(fields).Debugf("Command failed: %v", err)
		return apperrors.NewCommandFailedError(name, args, err)
	}

	logger.Op.WithFields(fields).Debug("Command finished")
	return nil
}
