package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxkimambo/envup/internal/executor"
	"github.com/maxkimambo/envup/internal/maintenance"
	"github.com/maxkimambo/envup/internal/utils"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the tasks update would run and in which order",
	Long: `Lists the selected maintenance tasks, whether their tool is installed, and
the order update would run them in: unprivileged tasks grouped into waves
that start together, then the privileged sequence.

The plan assumes every task applies and succeeds. Tasks whose dependencies
can never be satisfied are listed with the reason.

Example:
envup plan
envup plan --skip brew
envup plan --dot | dot -Tsvg > plan.svg
`,
	RunE: runPlan,
}

func init() {
	addSelectionFlags(planCmd)
	planCmd.Flags().Bool("dot", false, "Print the dependency graph in Graphviz DOT format instead")
}

func runPlan(cmd *cobra.Command, args []string) error {
	runner := newRunner()
	e, defs, err := buildExecutor(cmd, runner, executor.DefaultExecutorConfig())
	if err != nil {
		return err
	}

	if dot, _ := cmd.Flags().GetBool("dot"); dot {
		_, err = fmt.Fprint(cmd.OutOrStdout(), e.DOTGraph(nil))
		return err
	}

	plan, err := e.Plan()
	if err != nil {
		return err
	}

	_, err = buildPlanReport(cmd.Context(), e, plan, defs).WriteTo(cmd.OutOrStdout())
	return err
}

func buildPlanReport(ctx context.Context, e *executor.Executor, plan *executor.Plan, defs []maintenance.Definition) *utils.ReportBuilder {
	table := utils.NewTableFormatter("TASK", "SUDO", "INSTALLED", "DEPENDS ON", "DESCRIPTION")
	for _, t := range e.Tasks() {
		installed := "yes"
		if t.Condition != nil {
			if ok, _ := t.Condition(ctx); !ok {
				installed = "no"
			}
		}
		sudo := ""
		if t.RequiresSudo {
			sudo = "yes"
		}
		table.AddRow(t.ID, sudo, installed, strings.Join(t.DependsOn, ", "), t.Description)
	}

	rb := utils.NewReportBuilder().
		Header(fmt.Sprintf("Maintenance plan (%d task(s))", len(defs))).
		AddTable(table)

	if len(plan.Waves) > 0 {
		rb.Section("Unprivileged waves (tasks in a wave start together)")
		for i, wave := range plan.Waves {
			rb.AddNumbered(i+1, strings.Join(wave, ", "))
		}
	}

	if len(plan.Privileged) > 0 {
		rb.Section("Privileged sequence (one at a time, after confirmation)")
		for i, id := range plan.Privileged {
			rb.AddNumbered(i+1, id)
		}
	}

	if len(plan.Unreachable) > 0 {
		rb.Section("Never runnable")
		for _, b := range plan.Unreachable {
			rb.AddBullet(b.ID)
			rb.AddIndented("waits on: "+executor.FormatUnmet(b.Unmet), 1)
		}
	}

	if warnings := e.Validate(); len(warnings) > 0 {
		rb.Section("Warnings")
		for _, w := range warnings {
			rb.AddBullet(w.Message)
		}
	}

	return rb
}
