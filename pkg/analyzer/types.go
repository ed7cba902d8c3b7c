// Package analyzer runs a report task over a log source: it selects the
// grammar, aggregation mode, threshold and table layout for the task and
// owns the read loop.
package analyzer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ccollicutt/honeylog/pkg/aggregator"
	"github.com/ccollicutt/honeylog/pkg/output"
)

// Task identifies a report.
type Task string

const (
	TaskFailedLogins    Task = "failed-logins"
	TaskConnections     Task = "connections"
	TaskSuccessfulCreds Task = "successful-creds"
	TaskIdentifyBots    Task = "identify-bots"
	TaskTopCommands     Task = "top-commands"
)

// ErrUnknownTask is returned for a task name that is not one of Tasks().
var ErrUnknownTask = errors.New("unknown task")

// Tasks returns every task in a fixed order.
func Tasks() []Task {
	return []Task{
		TaskFailedLogins,
		TaskConnections,
		TaskSuccessfulCreds,
		TaskIdentifyBots,
		TaskTopCommands,
	}
}

// TaskNames returns the task names joined with "|", for usage strings.
func TaskNames() string {
	names := make([]string, 0, len(Tasks()))
	for _, t := range Tasks() {
		names = append(names, string(t))
	}
	return strings.Join(names, "|")
}

// ParseTask converts a task name to a Task.
func ParseTask(s string) (Task, error) {
	for _, t := range Tasks() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q (must be one of %s)", ErrUnknownTask, s, TaskNames())
}

// String returns the task name.
func (t Task) String() string {
	return string(t)
}

// Stats contains execution statistics for a run.
type Stats struct {
	// LinesProcessed is the total number of log lines examined.
	LinesProcessed int

	// LinesMatched is the number of lines that produced an event.
	LinesMatched int

	// Groups is the number of distinct keys before the threshold filter.
	Groups int

	// StartTime is when processing began.
	StartTime time.Time

	// EndTime is when processing completed.
	EndTime time.Time
}

// Result is the outcome of running one task.
type Result struct {
	// Task is the report that was run.
	Task Task

	// Source is the log file that was read.
	Source string

	// Metrics holds the metric per key after the threshold filter.
	Metrics aggregator.Metrics

	// Table is the ordered, renderable form of Metrics.
	Table *output.Table

	// Stats provides execution statistics.
	Stats Stats
}

// Report converts the result into a renderable report.
func (r *Result) Report() *output.Report {
	return &output.Report{
		Table: r.Table,
		Summary: output.Summary{
			LinesProcessed: r.Stats.LinesProcessed,
			LinesMatched:   r.Stats.LinesMatched,
			Groups:         r.Stats.Groups,
			GroupsReported: len(r.Table.Rows),
		},
		Metadata: output.Metadata{
			Task:       string(r.Task),
			Source:     r.Source,
			AnalyzedAt: r.Stats.EndTime,
			Duration:   r.Stats.EndTime.Sub(r.Stats.StartTime),
		},
	}
}
