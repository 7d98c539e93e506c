package executor

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/logger"
	"golang.org/x/sync/errgroup"
)

// PrivilegedGate is consulted once before the privileged phase with the ids
// about to run. Returning false skips the whole phase.
type PrivilegedGate func(ctx context.Context, taskIDs []string) (bool, error)

// ExecutorConfig contains configuration for the executor
type ExecutorConfig struct {
	// MaxParallelTasks bounds concurrent actions and condition checks; 0 means unbounded
	MaxParallelTasks int

	// DryRun logs the tasks that would run without invoking their actions
	DryRun bool

	// PrivilegedGate confirms the privileged phase; nil runs it unconditionally
	PrivilegedGate PrivilegedGate

	// ProgressInterval is how often a progress line is logged while
	// unprivileged tasks run; 0 disables progress lines
	ProgressInterval time.Duration
}

// DefaultExecutorConfig returns a default configuration
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{}
}

// Executor holds one batch of tasks and runs them in two phases: unprivileged
// tasks concurrently in dependency order, then privileged tasks one at a time
// in registration order.
type Executor struct {
	config *ExecutorConfig

	mu    sync.Mutex
	tasks []*Task
	index map[string]*Task
}

// NewExecutor creates a new executor
func NewExecutor(config *ExecutorConfig) *Executor {
	if config == nil {
		config = DefaultExecutorConfig()
	}

	return &Executor{
		config: config,
		index:  make(map[string]*Task),
	}
}

// Register appends a task to the batch. Malformed tasks and duplicate ids are
// rejected here rather than discovered mid-run. Dependencies on ids that are
// not registered yet are allowed; Validate reports the ones still missing.
func (e *Executor) Register(task Task) error {
	if task.ID == "" {
		return apperrors.NewEmptyTaskIDError()
	}
	if task.Action == nil {
		return apperrors.NewMissingActionError(task.ID)
	}
	for _, dep := range task.DependsOn {
		if dep == task.ID {
			return apperrors.NewSelfDependencyError(task.ID)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.index[task.ID]; exists {
		return apperrors.NewDuplicateTaskError(task.ID)
	}

	task.DependsOn = append([]string(nil), task.DependsOn...)
	e.tasks = append(e.tasks, &task)
	e.index[task.ID] = &task
	return nil
}

// Tasks returns the registered tasks in registration order
func (e *Executor) Tasks() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := make([]Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		tasks = append(tasks, *t)
	}
	return tasks
}

// Size returns the number of registered tasks
func (e *Executor) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func (e *Executor) snapshot() ([]*Task, map[string]*Task) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := append([]*Task(nil), e.tasks...)
	index := make(map[string]*Task, len(e.index))
	for id, t := range e.index {
		index[id] = t
	}
	return tasks, index
}

// Run executes the batch and reports what happened to every task. Task
// failures, skipped tasks and unsatisfiable dependencies are recorded in the
// report and never abort the run. Cancelling ctx stops new tasks from
// starting; running actions see the cancellation through their own ctx.
func (e *Executor) Run(ctx context.Context) *Report {
	startTime := time.Now()
	tasks, index := e.snapshot()
	st := newRunState(tasks, index)

	for _, w := range validate(tasks, index) {
		logger.User.Warn(w.Message)
		st.report.Warnings = append(st.report.Warnings, w)
	}

	logger.User.Startingf("Starting maintenance run of %d task(s)", len(tasks))

	unprivileged, privileged := e.filterAvailable(ctx, tasks, st)

	if len(unprivileged) > 0 {
		logger.User.Infof("Executing %d unprivileged task(s)...", len(unprivileged))
		e.runUnprivileged(ctx, unprivileged, st)
	}

	if len(privileged) > 0 {
		logger.User.Privilegedf("Executing %d system task(s) (may require sudo)...", len(privileged))
		e.runPrivileged(ctx, privileged, st)
	}

	st.report.WasCancelled = ctx.Err() != nil
	st.report.ExecutionTime = time.Since(startTime)
	logFinalSummary(st.report)

	return st.report
}

// filterAvailable evaluates every condition concurrently and partitions the
// applicable tasks by privilege, keeping registration order.
func (e *Executor) filterAvailable(ctx context.Context, tasks []*Task, st *runState) (unprivileged, privileged []*Task) {
	applicable := make([]bool, len(tasks))

	var g errgroup.Group
	if e.config.MaxParallelTasks > 0 {
		g.SetLimit(e.config.MaxParallelTasks)
	}
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			applicable[i] = e.evaluate(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	for i, t := range tasks {
		if !applicable[i] {
			st.skip(t, "not applicable")
			logger.Op.WithFields(map[string]interface{}{
				"task": t.ID,
			}).Debug("Condition not met, task excluded from this run")
			continue
		}
		if t.RequiresSudo {
			privileged = append(privileged, t)
		} else {
			unprivileged = append(unprivileged, t)
		}
	}

	return unprivileged, privileged
}

// evaluate runs a task's condition. Errors and panics count as "not applicable".
func (e *Executor) evaluate(ctx context.Context, t *Task) (ok bool) {
	if t.Condition == nil {
		return true
	}

	defer func() {
		if r := recover(); r != nil {
			logger.User.Warnf("Condition for %s panicked: %v", t.ID, r)
			ok = false
		}
	}()

	ok, err := t.Condition(ctx)
	if err != nil {
		logger.User.Warn(apperrors.DisplayErrorSummary(apperrors.NewConditionError(t.ID, err)))
		return false
	}
	return ok
}

// completion is the only message an action sends back to the control loop
type completion struct {
	id    string
	err   error
	start time.Time
	end   time.Time
}

// invoke runs a task's action, converting panics into failures
func (e *Executor) invoke(ctx context.Context, t *Task) (c completion) {
	c.id = t.ID
	c.start = time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.err = apperrors.NewActionPanickedError(t.ID, r)
		}
		c.end = time.Now()
	}()

	if e.config.DryRun {
		logger.User.Infof("[dry-run] would run %s", t.ID)
		return c
	}

	c.err = t.Action(ctx)
	return c
}

// settle records a finished action in the run state
func (e *Executor) settle(c completion, st *runState) {
	st.complete(c)

	if c.err != nil {
		logger.User.Errorf("Failed to execute %s: %v", c.id, c.err)
		return
	}
	logger.User.Successf("Completed: %s (%v)", c.id, c.end.Sub(c.start).Round(time.Millisecond))
}
