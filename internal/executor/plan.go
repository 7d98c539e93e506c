package executor

// Plan is a static preview of a run assuming every task applies and succeeds
type Plan struct {
	// Order is a topological order of all registered tasks
	Order []string

	// Waves groups unprivileged tasks by the round in which they become ready
	Waves [][]string

	// Privileged lists privileged tasks that would run, in registration order
	Privileged []string

	// Unreachable lists tasks whose dependencies can never be satisfied
	Unreachable []BlockedTask
}

// Plan computes the execution preview. It fails only on dependency cycles.
func (e *Executor) Plan() (*Plan, error) {
	tasks, index := e.snapshot()

	order, err := topoOrder(tasks, index)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Order: order}
	done := make(map[string]bool, len(tasks))
	met := func(t *Task) bool {
		for _, dep := range t.DependsOn {
			if !done[dep] {
				return false
			}
		}
		return true
	}

	var remaining []*Task
	for _, t := range tasks {
		if !t.RequiresSudo {
			remaining = append(remaining, t)
		}
	}

	for len(remaining) > 0 {
		var wave []string
		var next []*Task
		for _, t := range remaining {
			if met(t) {
				wave = append(wave, t.ID)
			} else {
				next = append(next, t)
			}
		}
		if len(wave) == 0 {
			break
		}
		for _, id := range wave {
			done[id] = true
		}
		plan.Waves = append(plan.Waves, wave)
		remaining = next
	}

	for _, t := range remaining {
		plan.Unreachable = append(plan.Unreachable, BlockedTask{
			ID:    t.ID,
			Unmet: plannedUnmet(t, index, done, nil),
		})
	}

	seen := make(map[string]bool)
	for _, t := range tasks {
		if !t.RequiresSudo {
			continue
		}
		seen[t.ID] = true
		if met(t) {
			done[t.ID] = true
			plan.Privileged = append(plan.Privileged, t.ID)
			continue
		}
		plan.Unreachable = append(plan.Unreachable, BlockedTask{
			ID:    t.ID,
			Unmet: plannedUnmet(t, index, done, seen),
		})
	}

	return plan, nil
}

// plannedUnmet classifies unmet dependencies of t. seen holds the privileged
// tasks already visited and is nil while planning the unprivileged phase.
func plannedUnmet(t *Task, index map[string]*Task, done, seen map[string]bool) []UnmetDependency {
	var unmet []UnmetDependency
	for _, dep := range t.DependsOn {
		if done[dep] {
			continue
		}
		state := DependencyBlocked
		target, ok := index[dep]
		switch {
		case !ok:
			state = DependencyMissing
		case target.RequiresSudo && seen == nil:
			state = DependencyPrivileged
		case target.RequiresSudo && !seen[dep]:
			state = DependencyPending
		}
		unmet = append(unmet, UnmetDependency{ID: dep, State: state})
	}
	return unmet
}

// IsUnreachable reports whether id is in the unreachable set
func (p *Plan) IsUnreachable(id string) bool {
	for _, b := range p.Unreachable {
		if b.ID == id {
			return true
		}
	}
	return false
}
