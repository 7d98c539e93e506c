package executor

import (
	"fmt"
	"os"
	"strings"
	"time"
)

var outcomeColors = map[Outcome]string{
	OutcomePending:   "lightgrey",
	OutcomeExecuted:  "lightgreen",
	OutcomeFailed:    "salmon",
	OutcomeSkipped:   "white",
	OutcomeBlocked:   "orange",
	OutcomeCancelled: "khaki",
}

// DOTGraph renders the batch as a Graphviz digraph with an edge from each
// dependency to its dependant. With a report, nodes are coloured by outcome;
// without one, privileged tasks are marked so the two phases stand out.
// Ids and labels are written with %q, whose escaping of quotes, backslashes
// and newlines is valid DOT.
func (e *Executor) DOTGraph(report *Report) string {
	tasks, index := e.snapshot()

	var sb strings.Builder
	sb.WriteString("digraph Maintenance {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=filled];\n\n")

	for _, t := range tasks {
		label := t.ID
		color := "lightblue"
		if t.RequiresSudo {
			label += "\n(sudo)"
			color = "plum"
		}
		if report != nil {
			res := report.Results[t.ID]
			if res != nil {
				color = outcomeColors[res.Outcome]
				label += "\n" + res.Outcome.String()
				if res.StartTime != nil {
					label += "\n" + res.Duration.Round(100*time.Millisecond).String()
				}
			}
		}
		sb.WriteString(fmt.Sprintf("  %q [label=%q, fillcolor=%q];\n", t.ID, label, color))
	}

	// Unregistered dependencies get a dashed placeholder node
	missing := make(map[string]bool)
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := index[dep]; !ok && !missing[dep] {
				missing[dep] = true
				sb.WriteString(fmt.Sprintf("  %q [label=%q, style=dashed];\n", dep, dep+"\n(missing)"))
			}
		}
	}

	sb.WriteString("\n")
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", dep, t.ID))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// ExportDOT writes DOTGraph to filename
func (e *Executor) ExportDOT(filename string, report *Report) error {
	return os.WriteFile(filename, []byte(e.DOTGraph(report)), 0644)
}

