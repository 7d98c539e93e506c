package executor

import "context"

// Action performs a task's work. It may run external processes and must not
// touch executor state.
type Action func(ctx context.Context) error

// Condition decides whether a task applies to this machine, e.g. whether a
// binary is on PATH. An error is treated as "not applicable".
type Condition func(ctx context.Context) (bool, error)

// Task is a single unit of maintenance work
type Task struct {
	ID          string
	Description string
	Action      Action
	// Condition is optional; a nil condition always applies
	Condition Condition
	// DependsOn lists task ids that must have executed successfully first
	DependsOn    []string
	RequiresSudo bool
}

// Always is a condition that is always met
func Always(context.Context) (bool, error) {
	return true, nil
}

// Phase identifies which execution stage handled a task
type Phase string

const (
	PhaseUnprivileged Phase = "unprivileged"
	PhasePrivileged   Phase = "privileged"
)

func phaseOf(t *Task) Phase {
	if t.RequiresSudo {
		return PhasePrivileged
	}
	return PhaseUnprivileged
}

// Outcome is the final state of a task after a run
type Outcome int

const (
	// OutcomePending indicates the task was never started
	OutcomePending Outcome = iota
	// OutcomeExecuted indicates the action completed successfully
	OutcomeExecuted
	// OutcomeFailed indicates the action returned an error or panicked
	OutcomeFailed
	// OutcomeSkipped indicates the condition was not met or the privileged phase was declined
	OutcomeSkipped
	// OutcomeBlocked indicates the dependencies could never be satisfied
	OutcomeBlocked
	// OutcomeCancelled indicates the run was cancelled before the task started
	OutcomeCancelled
)

// String returns a string representation of the Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeExecuted:
		return "executed"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
