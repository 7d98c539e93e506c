package progress

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Snapshot is the state of a run at one point in time
type Snapshot struct {
	Phase    string
	Total    int
	Finished int
	Failed   int
	// Running lists the ids of tasks currently in flight
	Running []string
}

// Reporter formats progress lines for a run; the caller decides when to report
type Reporter struct {
	startTime time.Time
	now       func() time.Time
}

// NewReporter creates a new progress reporter starting now
func NewReporter() *Reporter {
	return newReporter(time.Now)
}

func newReporter(now func() time.Time) *Reporter {
	return &Reporter{
		startTime: now(),
		now:       now,
	}
}

// Elapsed returns the time since the reporter was created
func (r *Reporter) Elapsed() time.Duration {
	return r.now().Sub(r.startTime)
}

// Report generates a formatted progress line
func (r *Reporter) Report(s Snapshot) string {
	percentage := 0.0
	if s.Total > 0 {
		percentage = float64(s.Finished) / float64(s.Total) * 100
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Progress: %d/%d tasks finished (%.0f%%)", s.Finished, s.Total, percentage))
	if s.Phase != "" {
		sb.WriteString(fmt.Sprintf(" | Phase: %s", s.Phase))
	}
	if s.Failed > 0 {
		sb.WriteString(fmt.Sprintf(" | Failed: %d", s.Failed))
	}
	sb.WriteString(fmt.Sprintf(" | Elapsed: %s", FormatDuration(r.Elapsed())))

	if len(s.Running) > 0 {
		running := append([]string(nil), s.Running...)
		sort.Strings(running)
		sb.WriteString(fmt.Sprintf("\n   Still running: %s", strings.Join(running, ", ")))
	}

	return sb.String()
}

// FormatDuration formats a duration in a user-friendly way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
