package cmd

import (
	"fmt"
	"io"
	"time"

	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/executor"
	"github.com/maxkimambo/envup/internal/logger"
	"github.com/maxkimambo/envup/internal/maintenance"
	"github.com/maxkimambo/envup/internal/utils"
)

const maxDetailWidth = 60

var outcomeLabels = map[executor.Outcome]string{
	executor.OutcomeExecuted:  "✅ executed",
	executor.OutcomeFailed:    "❌ failed",
	executor.OutcomeSkipped:   "⏭️ skipped",
	executor.OutcomeBlocked:   "⛔ blocked",
	executor.OutcomeCancelled: "🛑 cancelled",
	executor.OutcomePending:   "… pending",
}

func descriptions(defs []maintenance.Definition) map[string]string {
	out := make(map[string]string, len(defs))
	for _, s := range defs {
		out[s.ID] = s.Description
	}
	return out
}

// renderSummary prints a table of task outcomes followed by a summary box. In
// JSON mode each result is logged as a structured entry instead.
func renderSummary(w io.Writer, report *executor.Report, descriptions map[string]string) {
	if jsonLogs {
		for _, res := range report.OrderedResults() {
			fields := map[string]interface{}{
				"task":     res.ID,
				"phase":    string(res.Phase),
				"outcome":  res.Outcome.String(),
				"duration": res.Duration.Round(time.Millisecond).String(),
			}
			if res.Reason != "" {
				fields["reason"] = res.Reason
			}
			if res.Error != nil {
				fields["error"] = res.Error.Error()
			}
			logger.Op.WithFields(fields).Info("Task result")
		}
		return
	}

	if quiet && report.Success() {
		return
	}

	table := utils.NewTableFormatter("TASK", "PHASE", "OUTCOME", "TIME", "DETAILS").WithMaxCellWidth(maxDetailWidth)
	for _, res := range report.OrderedResults() {
		if quiet && res.Outcome == executor.OutcomeSkipped {
			continue
		}
		table.AddRow(res.ID, string(res.Phase), outcomeLabels[res.Outcome], formatDuration(res), details(res, descriptions))
	}
	if table.Len() > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, table.String())
	}

	fmt.Fprintln(w, summaryBox(report).Render())
}

// Wide terminals still get a box that reads as one block
const summaryMaxWidth = 100

func summaryBox(report *executor.Report) *utils.Box {
	var box *utils.Box
	switch {
	case len(report.Failed) > 0:
		box = utils.NewBox(utils.ErrorMessage, "Maintenance finished with failures")
	case report.WasCancelled:
		box = utils.NewBox(utils.WarningMessage, "Maintenance run cancelled")
	case !report.Success():
		box = utils.NewBox(utils.WarningMessage, "Maintenance finished, some tasks could not run")
	default:
		box = utils.NewBox(utils.SuccessMessage, "Maintenance finished")
	}

	box.WithMaxWidth(summaryMaxWidth)
	box.AddLine(report.Summary())
	box.AddKeyValue("Duration", report.ExecutionTime.Round(time.Millisecond))

	for _, id := range report.Failed {
		box.AddBullet(fmt.Sprintf("%s: %s", id, apperrors.DisplayErrorSummary(report.Results[id].Error)))
	}
	for _, id := range report.Blocked {
		box.AddBullet(fmt.Sprintf("%s is blocked by %s", id, executor.FormatUnmet(report.Results[id].Unmet)))
	}
	for _, w := range report.Warnings {
		box.AddBullet(w.Message)
	}
	return box
}

func details(res *executor.TaskResult, descriptions map[string]string) string {
	switch {
	case res.Error != nil:
		return apperrors.DisplayErrorSummary(res.Error)
	case res.Reason != "":
		return res.Reason
	default:
		return descriptions[res.ID]
	}
}

func formatDuration(res *executor.TaskResult) string {
	if res.StartTime == nil {
		return "-"
	}
	return res.Duration.Round(100 * time.Millisecond).String()
}
