package executor

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/logger"
)

// DependencyState explains why a dependency was not satisfied
type DependencyState string

const (
	// DependencyFailed means the dependency ran and failed
	DependencyFailed DependencyState = "failed"
	// DependencyMissing means no task with that id is registered
	DependencyMissing DependencyState = "missing"
	// DependencyNotApplicable means the dependency was skipped
	DependencyNotApplicable DependencyState = "not applicable"
	// DependencyPrivileged means an unprivileged task waits on a privileged one
	DependencyPrivileged DependencyState = "privileged"
	// DependencyBlocked means the dependency itself never became ready
	DependencyBlocked DependencyState = "blocked"
	// DependencyPending means a privileged dependency is registered later in the sequence
	DependencyPending DependencyState = "pending"
	// DependencyCancelled means the run was cancelled before the dependency started
	DependencyCancelled DependencyState = "cancelled"
)

// UnmetDependency names a dependency that kept a task from running
type UnmetDependency struct {
	ID    string
	State DependencyState
}

func (u UnmetDependency) String() string {
	return fmt.Sprintf("%s (%s)", u.ID, u.State)
}

// FormatUnmet joins unmet dependencies as "id (state), id (state)"
func FormatUnmet(unmet []UnmetDependency) string {
	parts := make([]string, 0, len(unmet))
	for _, u := range unmet {
		parts = append(parts, u.String())
	}
	return strings.Join(parts, ", ")
}

// BlockedTask is a task that could never become ready
type BlockedTask struct {
	ID    string
	Unmet []UnmetDependency
}

// Deadlock describes the unprivileged tasks left pending when nothing was
// ready and nothing was running
type Deadlock struct {
	Pending []BlockedTask
}

func (d *Deadlock) String() string {
	parts := make([]string, 0, len(d.Pending))
	for _, p := range d.Pending {
		parts = append(parts, fmt.Sprintf("%s waits on [%s]", p.ID, FormatUnmet(p.Unmet)))
	}
	return strings.Join(parts, "; ")
}

// IDs returns the ids of the blocked tasks
func (d *Deadlock) IDs() []string {
	ids := make([]string, 0, len(d.Pending))
	for _, p := range d.Pending {
		ids = append(ids, p.ID)
	}
	return ids
}

// TaskResult contains the result of a single task
type TaskResult struct {
	ID      string
	Phase   Phase
	Outcome Outcome

	// Reason explains skipped, blocked and cancelled outcomes
	Reason string

	// Error is set for failed tasks
	Error error

	// Unmet is set for blocked tasks
	Unmet []UnmetDependency

	StartTime *time.Time
	EndTime   *time.Time
	Duration  time.Duration
}

// Report is the outcome of a Run
type Report struct {
	// Results maps task ids to their results
	Results map[string]*TaskResult

	// Order lists task ids in registration order
	Order []string

	// Executed lists successful task ids in completion order
	Executed  []string
	Failed    []string
	Skipped   []string
	Blocked   []string
	Cancelled []string

	// Deadlock is set when unprivileged tasks were left pending
	Deadlock *Deadlock

	Warnings      []Warning
	WasCancelled  bool
	ExecutionTime time.Duration
}

func newReport() *Report {
	return &Report{
		Results: make(map[string]*TaskResult),
	}
}

// Success reports whether every applicable task executed
func (r *Report) Success() bool {
	return len(r.Failed) == 0 && len(r.Blocked) == 0 && len(r.Cancelled) == 0
}

// Err returns an error listing failed tasks, or nil if none failed. Blocked
// and skipped tasks are not errors; callers inspect the report for those.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}

	err := apperrors.NewRunIncompleteError(r.Failed)
	for _, id := range r.Failed {
		if res := r.Results[id]; res != nil && res.Error != nil {
			err.WithContext(id, res.Error.Error())
		}
	}
	return err
}

// OrderedResults returns results in registration order
func (r *Report) OrderedResults() []*TaskResult {
	results := make([]*TaskResult, 0, len(r.Order))
	for _, id := range r.Order {
		results = append(results, r.Results[id])
	}
	return results
}

// Outcome returns the outcome recorded for id
func (r *Report) Outcome(id string) Outcome {
	if res, ok := r.Results[id]; ok {
		return res.Outcome
	}
	return OutcomePending
}

// Summary returns a one-line count of outcomes
func (r *Report) Summary() string {
	summary := fmt.Sprintf("%d executed, %d failed, %d skipped, %d blocked",
		len(r.Executed), len(r.Failed), len(r.Skipped), len(r.Blocked))
	if len(r.Cancelled) > 0 {
		summary += fmt.Sprintf(", %d cancelled", len(r.Cancelled))
	}
	return summary
}

func logFinalSummary(r *Report) {
	logger.Op.WithFields(map[string]interface{}{
		"executed":  len(r.Executed),
		"failed":    len(r.Failed),
		"skipped":   len(r.Skipped),
		"blocked":   len(r.Blocked),
		"cancelled": len(r.Cancelled),
		"duration":  r.ExecutionTime.Round(time.Millisecond).String(),
	}).Info("Run finished")

	switch {
	case len(r.Failed) > 0:
		logger.User.Errorf("Finished with failures: %s", r.Summary())
	case !r.Success():
		logger.User.Warnf("Finished: %s", r.Summary())
	default:
		logger.User.Successf("All tasks finished: %s", r.Summary())
	}
}
