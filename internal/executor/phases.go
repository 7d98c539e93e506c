package executor

import (
	"context"
	"strings"
	"time"

	"github.com/maxkimambo/envup/internal/logger"
	"github.com/maxkimambo/envup/internal/progress"
)

// runUnprivileged launches every ready task, waits for at least one to
// settle and repeats until nothing is pending. When nothing is ready and
// nothing is running, the remaining tasks are reported as blocked.
func (e *Executor) runUnprivileged(ctx context.Context, tasks []*Task, st *runState) {
	pending := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		pending[t.ID] = true
	}
	inFlight := make(map[string]bool)
	results := make(chan completion, len(tasks))

	reporter := progress.NewReporter()
	var tick <-chan time.Time
	if e.config.ProgressInterval > 0 {
		ticker := time.NewTicker(e.config.ProgressInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for len(pending) > 0 || len(inFlight) > 0 {
		var ready []*Task
		if ctx.Err() == nil {
			for _, t := range tasks {
				if pending[t.ID] && st.dependenciesMet(t) {
					ready = append(ready, t)
				}
			}
		}

		if len(ready) == 0 && len(inFlight) == 0 {
			if ctx.Err() != nil {
				e.cancelRemaining(tasks, pending, st)
			} else {
				e.reportDeadlock(tasks, pending, st)
			}
			return
		}

		for _, t := range ready {
			t := t
			if limit := e.config.MaxParallelTasks; limit > 0 && len(inFlight) >= limit {
				break
			}
			delete(pending, t.ID)
			inFlight[t.ID] = true

			logger.User.Startingf("Running: %s", t.ID)
			go func() {
				results <- e.invoke(ctx, t)
			}()
		}

		// Something is in flight here, so this wait always ends
	wait:
		for {
			select {
			case c := <-results:
				e.settle(c, st)
				delete(inFlight, c.id)
				break wait
			case <-tick:
				logger.User.Info(reporter.Report(snapshotProgress(len(tasks), pending, inFlight, st)))
			}
		}

	drain:
		for {
			select {
			case c := <-results:
				e.settle(c, st)
				delete(inFlight, c.id)
			default:
				break drain
			}
		}
	}
}

func snapshotProgress(total int, pending, inFlight map[string]bool, st *runState) progress.Snapshot {
	running := make([]string, 0, len(inFlight))
	for id := range inFlight {
		running = append(running, id)
	}
	return progress.Snapshot{
		Phase:    string(PhaseUnprivileged),
		Total:    total,
		Finished: total - len(pending) - len(inFlight),
		Failed:   len(st.report.Failed),
		Running:  running,
	}
}

func (e *Executor) cancelRemaining(tasks []*Task, pending map[string]bool, st *runState) {
	var ids []string
	for _, t := range tasks {
		if pending[t.ID] {
			st.cancel(t)
			ids = append(ids, t.ID)
		}
	}
	logger.User.Warnf("Run cancelled, %d task(s) not started: %s", len(ids), strings.Join(ids, ", "))
}

func (e *Executor) reportDeadlock(tasks []*Task, pending map[string]bool, st *runState) {
	deadlock := &Deadlock{}
	for _, t := range tasks {
		if !pending[t.ID] {
			continue
		}
		unmet := st.unmetDependencies(t, PhaseUnprivileged)
		st.block(t, unmet)
		deadlock.Pending = append(deadlock.Pending, BlockedTask{ID: t.ID, Unmet: unmet})

		logger.Op.WithFields(map[string]interface{}{
			"task":  t.ID,
			"unmet": FormatUnmet(unmet),
		}).Warn("Task can never become ready")
	}
	st.report.Deadlock = deadlock

	logger.User.Blockedf("Cannot execute tasks due to unmet dependencies: %s", deadlock)
}

// runPrivileged runs privileged tasks one at a time so that only one sudo
// prompt can be waiting on the terminal.
func (e *Executor) runPrivileged(ctx context.Context, tasks []*Task, st *runState) {
	// Nobody should be asked to approve a phase that will not run
	if ctx.Err() != nil {
		ids := make([]string, 0, len(tasks))
		for _, t := range tasks {
			st.cancel(t)
			ids = append(ids, t.ID)
		}
		logger.User.Skipf("Skipping %d system task(s), run cancelled: %s", len(ids), strings.Join(ids, ", "))
		return
	}

	if gate := e.config.PrivilegedGate; gate != nil && !e.config.DryRun {
		ids := make([]string, 0, len(tasks))
		for _, t := range tasks {
			ids = append(ids, t.ID)
		}

		approved, err := gate(ctx, ids)
		if err != nil {
			logger.User.Warnf("Privileged phase not confirmed: %v", err)
		}
		if err != nil || !approved {
			for _, t := range tasks {
				st.skip(t, "privileged phase declined")
			}
			logger.User.Skipf("Skipping %d system task(s): %s", len(ids), strings.Join(ids, ", "))
			return
		}
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			st.cancel(t)
			logger.User.Skipf("Skipping %s: run cancelled", t.ID)
			continue
		}

		// Earlier privileged tasks can change what is installed
		if !e.evaluate(ctx, t) {
			st.skip(t, "no longer applicable")
			logger.User.Skipf("Skipping %s: no longer applicable", t.ID)
			continue
		}

		if unmet := st.unmetDependencies(t, PhasePrivileged); len(unmet) > 0 {
			st.block(t, unmet)
			logger.User.Blockedf("Skipping %s: unmet dependencies %s", t.ID, FormatUnmet(unmet))
			continue
		}

		logger.User.Privilegedf("Running: %s", t.ID)
		e.settle(e.invoke(ctx, t), st)
	}
}
