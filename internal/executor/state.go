package executor

// runState is owned by the control loop of a single Run. Action goroutines
// never touch it; they report through completion messages.
type runState struct {
	index    map[string]*Task
	executed map[string]bool
	report   *Report
}

func newRunState(tasks []*Task, index map[string]*Task) *runState {
	st := &runState{
		index:    index,
		executed: make(map[string]bool, len(tasks)),
		report:   newReport(),
	}

	for _, t := range tasks {
		st.report.Order = append(st.report.Order, t.ID)
		st.report.Results[t.ID] = &TaskResult{
			ID:      t.ID,
			Phase:   phaseOf(t),
			Outcome: OutcomePending,
		}
	}
	return st
}

func (st *runState) dependenciesMet(t *Task) bool {
	for _, dep := range t.DependsOn {
		if !st.executed[dep] {
			return false
		}
	}
	return true
}

// unmetDependencies lists the dependencies of t that have not executed,
// classified by why they never will (or not yet, in the privileged phase).
func (st *runState) unmetDependencies(t *Task, phase Phase) []UnmetDependency {
	var unmet []UnmetDependency
	for _, dep := range t.DependsOn {
		if st.executed[dep] {
			continue
		}
		unmet = append(unmet, UnmetDependency{ID: dep, State: st.classify(dep, phase)})
	}
	return unmet
}

func (st *runState) classify(dep string, phase Phase) DependencyState {
	res, ok := st.report.Results[dep]
	if !ok {
		return DependencyMissing
	}

	switch res.Outcome {
	case OutcomeFailed:
		return DependencyFailed
	case OutcomeSkipped:
		return DependencyNotApplicable
	case OutcomeCancelled:
		return DependencyCancelled
	}

	if st.index[dep].RequiresSudo {
		if phase == PhaseUnprivileged {
			return DependencyPrivileged
		}
		if res.Outcome == OutcomePending {
			return DependencyPending
		}
	}
	return DependencyBlocked
}

func (st *runState) complete(c completion) {
	res := st.report.Results[c.id]
	start, end := c.start, c.end
	res.StartTime = &start
	res.EndTime = &end
	res.Duration = end.Sub(start)

	if c.err != nil {
		res.Outcome = OutcomeFailed
		res.Error = c.err
		st.report.Failed = append(st.report.Failed, c.id)
		return
	}

	res.Outcome = OutcomeExecuted
	st.executed[c.id] = true
	st.report.Executed = append(st.report.Executed, c.id)
}

func (st *runState) skip(t *Task, reason string) {
	res := st.report.Results[t.ID]
	res.Outcome = OutcomeSkipped
	res.Reason = reason
	st.report.Skipped = append(st.report.Skipped, t.ID)
}

func (st *runState) block(t *Task, unmet []UnmetDependency) {
	res := st.report.Results[t.ID]
	res.Outcome = OutcomeBlocked
	res.Unmet = unmet
	res.Reason = "unmet dependencies: " + FormatUnmet(unmet)
	st.report.Blocked = append(st.report.Blocked, t.ID)
}

func (st *runState) cancel(t *Task) {
	res := st.report.Results[t.ID]
	res.Outcome = OutcomeCancelled
	res.Reason = "run cancelled"
	st.report.Cancelled = append(st.report.Cancelled, t.ID)
}
