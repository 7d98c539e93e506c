package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxkimambo/envup/internal/executor"
	"github.com/maxkimambo/envup/internal/logger"
	"github.com/maxkimambo/envup/internal/utils"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Upgrade every installed runtime, package manager and OS package",
	Long: `Runs every applicable maintenance task.

Tasks apply only when their tool is installed. Unprivileged tasks (bun, deno,
fnm, npm, corepack, yt-dlp, brew and your own) run concurrently; a task that
depends on another starts once that one has succeeded. Privileged tasks (apt,
dnf, snap and your own sudo tasks) run afterwards one at a time, after a
single confirmation.

A failed task never stops the others. Tasks depending on it are reported as
blocked and the command exits non-zero.

Example:
envup update
envup update --only npm,corepack
envup update --skip snap --max-parallel 2 --auto-approve
envup update --dry-run
envup update --graph last-run.dot
`,
	RunE: runUpdate,
}

const progressInterval = 15 * time.Second

func init() {
	addSelectionFlags(updateCmd)
	updateCmd.Flags().Bool("dry-run", false, "Show what would run without running anything")
	updateCmd.Flags().BoolP("auto-approve", "y", false, "Run privileged tasks without asking for confirmation")
	updateCmd.Flags().String("graph", "", "Write the run's dependency graph, coloured by outcome, to this DOT file")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	graphPath, _ := cmd.Flags().GetString("graph")

	prompter := utils.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), autoApprove)
	execConfig := &executor.ExecutorConfig{
		DryRun:           dryRun,
		ProgressInterval: progressInterval,
		PrivilegedGate: func(ctx context.Context, taskIDs []string) (bool, error) {
			return prompter.ConfirmItems("run with sudo", taskIDs)
		},
	}

	e, defs, err := buildExecutor(cmd, newRunner(), execConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dryRun {
		logger.User.Info("Dry run: no commands will be executed")
		plan, err := e.Plan()
		if err != nil {
			logger.User.Warnf("Could not build the plan: %v", err)
		} else if _, err := buildPlanReport(ctx, e, plan, defs).WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	report := e.Run(ctx)
	renderSummary(cmd.OutOrStdout(), report, descriptions(defs))

	if graphPath != "" {
		if err := e.ExportDOT(graphPath, report); err != nil {
			logger.User.Warnf("Could not write dependency graph: %v", err)
		} else {
			logger.User.Infof("Dependency graph written to %s", graphPath)
		}
	}

	return report.Err()
}
