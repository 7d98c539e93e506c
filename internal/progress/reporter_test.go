package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestReporter_Elapsed(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newReporter(clock.now)

	assert.Zero(t, r.Elapsed())
	clock.advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, r.Elapsed())
}

func TestReporter_Report(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newReporter(clock.now)
	clock.advance(75 * time.Second)

	tests := []struct {
		name     string
		snapshot Snapshot
		expected string
	}{
		{
			name:     "nothing running",
			snapshot: Snapshot{Phase: "unprivileged", Total: 4, Finished: 4},
			expected: "Progress: 4/4 tasks finished (100%) | Phase: unprivileged | Elapsed: 1m 15s",
		},
		{
			name:     "running tasks are sorted",
			snapshot: Snapshot{Total: 4, Finished: 1, Failed: 1, Running: []string{"npm", "brew"}},
			expected: "Progress: 1/4 tasks finished (25%) | Failed: 1 | Elapsed: 1m 15s\n   Still running: brew, npm",
		},
		{
			name:     "empty batch",
			snapshot: Snapshot{},
			expected: "Progress: 0/0 tasks finished (0%) | Elapsed: 1m 15s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Report(tt.snapshot))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m 5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h 30m", FormatDuration(90*time.Minute))
}
