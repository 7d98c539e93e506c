package maintenance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maxkimambo/envup/internal/config"
	apperrors "github.com/maxkimambo/envup/internal/errors"
	"github.com/maxkimambo/envup/internal/executor"
)

// Definition describes a maintenance task as a sequence of commands gated on a
// binary being installed
type Definition struct {
	ID          string
	Description string
	// Requires is the binary that must be on PATH for the task to apply
	Requires  string
	Commands  [][]string
	DependsOn []string
	Sudo      bool
	// Builtin is false for tasks declared in the config file
	Builtin bool
}

// Task turns the definition into an executor task that runs its commands in order
// and stops at the first failure
func (s Definition) Task(runner Runner) executor.Task {
	commands := make([][]string, len(s.Commands))
	copy(commands, s.Commands)

	return executor.Task{
		ID:           s.ID,
		Description:  s.Description,
		DependsOn:    s.DependsOn,
		RequiresSudo: s.Sudo,
		Condition:    Installed(runner, s.Requires),
		Action: func(ctx context.Context) error {
			for i, argv := range commands {
				run := runner.Run
				if s.Sudo {
					run = runner.RunPrivileged
				}
				if err := run(ctx, s.ID, argv[0], argv[1:]...); err != nil {
					if len(commands) == 1 {
						return err
					}
					return apperrors.NewActionFailedError(s.ID, err).
						WithContext("step", fmt.Sprintf("%d/%d", i+1, len(commands)))
				}
			}
			return nil
		},
	}
}

// Installed is a condition that holds when name is on PATH
func Installed(runner Runner, name string) executor.Condition {
	return func(context.Context) (bool, error) {
		if name == "" {
			return true, nil
		}
		_, err := runner.LookPath(name)
		return err == nil, nil
	}
}

// Builtin returns the built-in maintenance tasks in registration order.
// Ordering dependencies between them are only declared when the dependency
// is installed, so npm still runs on machines without fnm.
func Builtin(runner Runner, nodeVersion string) []Definition {
	if nodeVersion == "" {
		nodeVersion = config.DefaultNodeVersion
	}

	optional := func(dep string) []string {
		if _, err := runner.LookPath(dep); err != nil {
			return nil
		}
		return []string{dep}
	}

	return []Definition{
		{
			ID:          "bun",
			Description: "Upgrade the bun runtime",
			Requires:    "bun",
			Commands:    [][]string{{"bun", "upgrade"}},
		},
		{
			ID:          "deno",
			Description: "Upgrade the deno runtime",
			Requires:    "deno",
			Commands:    [][]string{{"deno", "upgrade"}},
		},
		{
			ID:          "fnm",
			Description: fmt.Sprintf("Install and activate Node.js %s with fnm", nodeVersion),
			Requires:    "fnm",
			Commands: [][]string{
				{"fnm", "install", nodeVersion},
				{"fnm", "default", nodeVersion},
				{"fnm", "use", nodeVersion},
			},
		},
		{
			ID:          "npm",
			Description: "Update global npm packages",
			Requires:    "npm",
			Commands:    [][]string{{"npm", "update", "--global", "--latest"}},
			DependsOn:   optional("fnm"),
		},
		{
			ID:          "corepack",
			Description: "Install the latest pnpm through corepack",
			Requires:    "corepack",
			Commands:    [][]string{{"corepack", "install", "--global", "pnpm@latest"}},
			DependsOn:   optional("npm"),
		},
		{
			ID:          "yt-dlp",
			Description: "Self-update yt-dlp",
			Requires:    "yt-dlp",
			Commands:    [][]string{{"yt-dlp", "-U"}},
		},
		{
			ID:          "brew",
			Description: "Upgrade Homebrew packages",
			Requires:    "brew",
			Commands:    [][]string{{"brew", "upgrade"}},
		},
		{
			ID:          "apt",
			Description: "Upgrade apt packages",
			Requires:    "apt-get",
			Commands:    [][]string{{"apt-get", "update"}, {"apt-get", "upgrade", "-y"}},
			Sudo:        true,
		},
		{
			ID:          "dnf",
			Description: "Upgrade dnf packages",
			Requires:    "dnf",
			Commands:    [][]string{{"dnf", "upgrade", "-y"}},
			Sudo:        true,
		},
		{
			ID:          "snap",
			Description: "Refresh snap packages",
			Requires:    "snap",
			Commands:    [][]string{{"snap", "refresh"}},
			Sudo:        true,
		},
	}
}

// FromConfig converts user-defined tasks from the config file
func FromConfig(tasks []config.TaskConfig) []Definition {
	defs := make([]Definition, 0, len(tasks))
	for _, t := range tasks {
		description := t.Description
		if description == "" {
			description = strings.Join(t.Command, " ")
		}
		defs = append(defs, Definition{
			ID:          t.ID,
			Description: description,
			Requires:    t.Requires,
			Commands:    [][]string{t.Command},
			DependsOn:   t.DependsOn,
			Sudo:        t.Sudo,
		})
	}
	return defs
}

// Catalog assembles the built-in tasks followed by the user's tasks. A user
// task with the id of a built-in one replaces it in place.
func Catalog(runner Runner, cfg *config.Config) []Definition {
	defs := Builtin(runner, cfg.NodeVersion)
	for i := range defs {
		defs[i].Builtin = true
	}

	position := make(map[string]int, len(defs))
	for i, s := range defs {
		position[s.ID] = i
	}

	for _, s := range FromConfig(cfg.Tasks) {
		if i, ok := position[s.ID]; ok {
			defs[i] = s
			continue
		}
		position[s.ID] = len(defs)
		defs = append(defs, s)
	}
	return defs
}

// Select keeps the tasks named in only (all when empty) minus those in skip.
// Dependencies on tasks removed by the selection are dropped so the remaining
// tasks can still run. Unknown ids are a configuration error.
func Select(defs []Definition, only, skip []string) ([]Definition, error) {
	known := make(map[string]bool, len(defs))
	for _, s := range defs {
		known[s.ID] = true
	}

	var unknown []string
	for _, id := range append(append([]string(nil), only...), skip...) {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperrors.NewConfigInvalidError("task selection",
			fmt.Sprintf("unknown task id(s): %s", strings.Join(unknown, ", "))).
			WithTroubleshooting("Run 'envup plan' to list the available task ids")
	}

	keep := make(map[string]bool, len(defs))
	for _, s := range defs {
		keep[s.ID] = len(only) == 0
	}
	for _, id := range only {
		keep[id] = true
	}
	for _, id := range skip {
		keep[id] = false
	}

	selected := make([]Definition, 0, len(defs))
	for _, s := range defs {
		if !keep[s.ID] {
			continue
		}
		var deps []string
		for _, dep := range s.DependsOn {
			if known[dep] && !keep[dep] {
				continue
			}
			deps = append(deps, dep)
		}
		s.DependsOn = deps
		selected = append(selected, s)
	}
	return selected, nil
}

// Register adds every definition to the executor as a task
func Register(e *executor.Executor, runner Runner, defs []Definition) error {
	for _, s := range defs {
		if err := e.Register(s.Task(runner)); err != nil {
			return err
		}
	}
	return nil
}
