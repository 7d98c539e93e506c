package executor

import (
	"fmt"

	"github.com/gammazero/toposort"
)

// WarningKind classifies a problem found by Validate
type WarningKind string

const (
	WarningMissingDependency    WarningKind = "missing-dependency"
	WarningPrivilegedDependency WarningKind = "privileged-dependency"
	WarningCycle                WarningKind = "cycle"
)

// Warning is a batch problem that will leave tasks blocked. It never stops a run.
type Warning struct {
	Kind       WarningKind
	TaskID     string
	Dependency string
	Message    string
}

// Validate reports dependencies that can never be satisfied: ids that are not
// registered, unprivileged tasks waiting on privileged ones and cycles.
func (e *Executor) Validate() []Warning {
	tasks, index := e.snapshot()
	return validate(tasks, index)
}

func validate(tasks []*Task, index map[string]*Task) []Warning {
	var warnings []Warning

	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			target, ok := index[dep]
			if !ok {
				warnings = append(warnings, Warning{
					Kind:       WarningMissingDependency,
					TaskID:     t.ID,
					Dependency: dep,
					Message:    fmt.Sprintf("task %q depends on unregistered task %q", t.ID, dep),
				})
				continue
			}
			if !t.RequiresSudo && target.RequiresSudo {
				warnings = append(warnings, Warning{
					Kind:       WarningPrivilegedDependency,
					TaskID:     t.ID,
					Dependency: dep,
					Message: fmt.Sprintf("unprivileged task %q depends on privileged task %q, which only runs afterwards",
						t.ID, dep),
				})
			}
		}
	}

	if _, err := topoOrder(tasks, index); err != nil {
		warnings = append(warnings, Warning{
			Kind:    WarningCycle,
			Message: err.Error(),
		})
	}

	return warnings
}

// topoOrder sorts registered tasks so that every task follows its registered
// dependencies. Unregistered dependencies are ignored.
func topoOrder(tasks []*Task, index map[string]*Task) ([]string, error) {
	var edges []toposort.Edge
	for _, t := range tasks {
		known := 0
		for _, dep := range t.DependsOn {
			if _, ok := index[dep]; !ok {
				continue
			}
			// Edge (dep, id) means dep must come before id
			edges = append(edges, toposort.Edge{dep, t.ID})
			known++
		}
		if known == 0 {
			edges = append(edges, toposort.Edge{nil, t.ID})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("dependency cycle: %w", err)
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	return order, nil
}
