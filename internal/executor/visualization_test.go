package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOTGraph_Plan(t *testing.T) {
	e := NewExecutor(nil)
	mustRegister(t, e,
		Task{ID: "fnm", Action: noop},
		Task{ID: "npm", Action: noop, DependsOn: []string{"fnm", "ghost"}},
		Task{ID: "apt", Action: noop, RequiresSudo: true},
	)

	dot := e.DOTGraph(nil)

	assert.Contains(t, dot, "digraph Maintenance {")
	assert.Contains(t, dot, `"fnm" [label="fnm", fillcolor="lightblue"];`)
	assert.Contains(t, dot, `"apt" [label="apt\n(sudo)", fillcolor="plum"];`)
	assert.Contains(t, dot, `"ghost" [label="ghost\n(missing)", style=dashed];`)
	assert.Contains(t, dot, `"fnm" -> "npm";`)
	assert.Contains(t, dot, `"ghost" -> "npm";`)
}

func TestDOTGraph_QuotesIDs(t *testing.T) {
	e := NewExecutor(nil)
	mustRegister(t, e,
		Task{ID: `my "task"`, Action: noop},
		Task{ID: `back\slash`, Action: noop, DependsOn: []string{`my "task"`}},
	)

	dot := e.DOTGraph(nil)

	assert.Contains(t, dot, `"my \"task\"" [label="my \"task\"", fillcolor="lightblue"];`)
	assert.Contains(t, dot, `"back\\slash" [label="back\\slash", fillcolor="lightblue"];`)
	assert.Contains(t, dot, `"my \"task\"" -> "back\\slash";`)
}

func TestDOTGraph_Report(t *testing.T) {
	e := NewExecutor(nil)
	mustRegister(t, e,
		Task{ID: "fnm", Action: func(context.Context) error { return errors.New("boom") }},
		Task{ID: "npm", Action: noop, DependsOn: []string{"fnm"}},
	)
	report := e.Run(context.Background())

	dot := e.DOTGraph(report)

	assert.Contains(t, dot, `fillcolor="salmon"`)
	assert.Contains(t, dot, `"npm" [label="npm\nblocked", fillcolor="orange"];`)
}

func TestExportDOT(t *testing.T) {
	e := NewExecutor(nil)
	mustRegister(t, e, Task{ID: "bun", Action: noop})
	path := filepath.Join(t.TempDir(), "run.dot")

	require.NoError(t, e.ExportDOT(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, e.DOTGraph(nil), string(data))
}
