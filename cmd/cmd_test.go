package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maxkimambo/envup/internal/config"
	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/logger"
	"github.com/maxkimambo/envup/internal/maintenance"
	"github.com/maxkimambo/envup/internal/maintenance/mocks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default; cobra keeps flag state
// between executions of the same command tree
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, runner maintenance.Runner, stdin string, args ...string) (string, error) {
	t.Helper()

	original := newRunner
	newRunner = func() maintenance.Runner { return runner }

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))

	t.Cleanup(func() {
		newRunner = original
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
		logger.Setup(false, false, false)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUpdate_RunsInstalledTasks(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	runner := mocks.NewMockRunner(t).Installed("bun", "apt-get")
	runner.On("Run", mock.Anything, "bun", "bun", []string{"upgrade"}).Return(nil).Once()
	runner.On("RunPrivileged", mock.Anything, "apt", "apt-get", []string{"update"}).Return(nil).Once()
	runner.On("RunPrivileged", mock.Anything, "apt", "apt-get", []string{"upgrade", "-y"}).Return(nil).Once()

	out, err := execute(t, runner, "", "update", "--config", cfgPath, "--auto-approve")

	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance finished")
	assert.Contains(t, out, "2 executed, 0 failed, 8 skipped, 0 blocked")
	assert.Contains(t, out, "executed")
}

func TestUpdate_FailureReturnsRunError(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	runner := mocks.NewMockRunner(t).Installed("fnm", "npm", "corepack")
	runner.On("Run", mock.Anything, "fnm", "fnm", []string{"install", "22"}).
		Return(errors.New("exit status 1")).Once()

	out, err := execute(t, runner, "", "update", "--config", cfgPath)

	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.ErrorCategoryRun))
	assert.Contains(t, err.Error(), "fnm")
	assert.Contains(t, out, "finished with failures")
	assert.Contains(t, out, "npm is blocked by fnm (failed)")
	assert.Contains(t, out, "corepack is blocked by npm (blocked)")
	runner.AssertNotCalled(t, "Run", mock.Anything, "npm", mock.Anything, mock.Anything)
}

func TestUpdate_PrivilegedPromptDeclined(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	runner := mocks.NewMockRunner(t).Installed("snap")

	out, err := execute(t, runner, "no\n", "update", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "About to run with sudo the following 1 item(s):")
	assert.Contains(t, out, "privileged phase declined")
	runner.AssertNotCalled(t, "RunPrivileged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_DryRun(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	runner := mocks.NewMockRunner(t).Installed("bun", "snap")

	out, err := execute(t, runner, "", "update", "--config", cfgPath, "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance plan (10 task(s))")
	assert.Contains(t, out, "2 executed")
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	runner.AssertNotCalled(t, "RunPrivileged", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_DryRunWithCycleStillRuns(t *testing.T) {
	cfgPath := writeConfigFile(t, `
tasks:
  - id: first
    command: [mytool, one]
    depends_on: [second]
  - id: second
    command: [mytool, two]
    depends_on: [first]
`)
	runner := mocks.NewMockRunner(t).Installed("mytool")

	out, err := execute(t, runner, "", "update", "--config", cfgPath, "--dry-run", "--only", "first,second")

	require.NoError(t, err)
	assert.NotContains(t, out, "Maintenance plan")
	assert.Contains(t, out, "0 executed, 0 failed, 0 skipped, 2 blocked")
}

func TestUpdate_UserTaskFromConfig(t *testing.T) {
	cfgPath := writeConfigFile(t, `
disable: [bun]
tasks:
  - id: pipx
    command: [pipx, upgrade-all]
`)
	runner := mocks.NewMockRunner(t).Installed("bun", "pipx")
	runner.On("Run", mock.Anything, "pipx", "pipx", []string{"upgrade-all"}).Return(nil).Once()

	out, err := execute(t, runner, "", "update", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "pipx")
	assert.Contains(t, out, "1 executed")
	runner.AssertNotCalled(t, "Run", mock.Anything, "bun", mock.Anything, mock.Anything)
}

func TestUpdate_InvalidSelection(t *testing.T) {
	cfgPath := writeConfigFile(t, "")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown only", []string{"--only", "nope"}, apperrors.CodeConfigInvalid},
		{"negative parallelism", []string{"--max-parallel=-1"}, apperrors.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := mocks.NewMockRunner(t).Installed()
			args := append([]string{"update", "--config", cfgPath}, tt.args...)

			_, err := execute(t, runner, "", args...)

			require.Error(t, err)
			assert.Equal(t, "CONFIGURATION-"+tt.code, apperrors.GetErrorCode(err))
			assert.True(t, apperrors.IsUserError(err))
		})
	}
}

func TestUpdate_MissingConfigFile(t *testing.T) {
	runner := mocks.NewMockRunner(t)

	_, err := execute(t, runner, "", "update", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Equal(t, "CONFIGURATION-"+apperrors.CodeConfigRead, apperrors.GetErrorCode(err))
}

func TestPlan(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	runner := mocks.NewMockRunner(t).Installed("fnm", "npm", "apt-get")

	out, err := execute(t, runner, "", "plan", "--config", cfgPath, "--only", "fnm,npm,corepack,apt,snap")

	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance plan (5 task(s))")
	assert.Contains(t, out, "1. fnm")
	assert.Contains(t, out, "2. npm")
	assert.Contains(t, out, "3. corepack")
	assert.Contains(t, out, "Privileged sequence")
	assert.Contains(t, out, "1. apt")
	assert.Contains(t, out, "2. snap")
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlan_DOT(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	runner := mocks.NewMockRunner(t).Installed("fnm")

	out, err := execute(t, runner, "", "plan", "--config", cfgPath, "--dot", "--only", "fnm,npm")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph Maintenance {"))
	assert.Contains(t, out, `"fnm" -> "npm";`)
}

func TestUpdate_WritesGraph(t *testing.T) {
	cfgPath := writeConfigFile(t, "")
	graphPath := filepath.Join(t.TempDir(), "run.dot")
	runner := mocks.NewMockRunner(t).Installed("bun")
	runner.On("Run", mock.Anything, "bun", "bun", []string{"upgrade"}).Return(nil).Once()

	_, err := execute(t, runner, "", "update", "--config", cfgPath, "--only", "bun", "--graph", graphPath)

	require.NoError(t, err)
	data, err := os.ReadFile(graphPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bun" [label="bun\nexecuted`)
}

func TestCreateSelection(t *testing.T) {
	defer resetFlags(updateCmd)

	cfg := config.Default()
	cfg.MaxParallel = 3

	require.NoError(t, updateCmd.Flags().Set("only", "brew, bun"))
	require.NoError(t, updateCmd.Flags().Set("skip", "snap"))
	require.NoError(t, updateCmd.Flags().Set("node-version", "20"))

	sel, err := createSelection(updateCmd, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"brew", "bun"}, sel.Only)
	assert.Equal(t, []string{"snap"}, sel.Skip)
	assert.Equal(t, 3, sel.MaxParallel)
	assert.Equal(t, "20", sel.NodeVersion)
}

func TestDisabledIDs(t *testing.T) {
	cfg := config.Default()
	cfg.Disable = []string{"yt-dlp", "brew", "ghost"}
	catalog := []maintenance.Definition{{ID: "bun"}, {ID: "yt-dlp"}, {ID: "brew"}}

	tests := []struct {
		name     string
		only     []string
		expected []string
	}{
		{"all disabled entries", nil, []string{"yt-dlp", "brew"}},
		{"only re-enables", []string{"brew"}, []string{"yt-dlp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, disabledIDs(cfg, tt.only, catalog))
		})
	}
}
