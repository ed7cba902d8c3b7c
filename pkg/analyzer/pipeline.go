package analyzer

import (
	"fmt"
	"time"

	"github.com/ccollicutt/honeylog/pkg/aggregator"
	"github.com/ccollicutt/honeylog/pkg/extractor"
	"github.com/ccollicutt/honeylog/pkg/output"
)

// Pipeline is the fixed plan for one task.
type Pipeline struct {
	Task Task

	// Grammar is the single grammar every line is run through.
	Grammar extractor.Grammar

	// Aggregator folds the extracted events.
	Aggregator aggregator.Aggregator

	// MinMetric is the inclusive threshold; 0 disables filtering.
	MinMetric int

	// Layout is the table presentation.
	Layout output.Layout
}

// newPipeline builds the plan for task using the analyzer's thresholds.
func (a *Analyzer) newPipeline(task Task) (*Pipeline, error) {
	switch task {
	case TaskFailedLogins:
		return &Pipeline{
			Task:       task,
			Grammar:    extractor.GrammarFailedLogin,
			Aggregator: aggregator.NewCounter(eventKey),
			MinMetric:  a.minCount,
			Layout: output.Layout{
				Title:        fmt.Sprintf("Failed login attempts (min %d)", a.minCount),
				KeyHeaders:   []string{"IP"},
				MetricHeader: "Count",
				MetricWidth:  8,
				Order:        output.OrderByMetric,
			},
		}, nil

	case TaskConnections:
		return &Pipeline{
			Task:       task,
			Grammar:    extractor.GrammarNewConnection,
			Aggregator: aggregator.NewMinuteCounter(connectionTime),
			Layout: output.Layout{
				Title:        "Connections per minute",
				KeyHeaders:   []string{"Timestamp"},
				MetricHeader: "Count",
				MetricWidth:  8,
				Order:        output.OrderByKey,
			},
		}, nil

	case TaskSuccessfulCreds:
		return &Pipeline{
			Task:       task,
			Grammar:    extractor.GrammarSuccessfulLogin,
			Aggregator: aggregator.NewUniqueCounter(distinctIPs),
			Layout: output.Layout{
				Title:        "Successful login credentials",
				KeyHeaders:   []string{"Username", "Password"},
				KeyMinWidths: []int{15, 15},
				MetricHeader: "IP_Count",
				MetricWidth:  9,
				Order:        output.OrderByMetric,
			},
		}, nil

	case TaskIdentifyBots:
		return &Pipeline{
			Task:       task,
			Grammar:    extractor.GrammarClientFingerprint,
			Aggregator: aggregator.NewUniqueCounter(distinctIPs),
			MinMetric:  a.minIPs,
			Layout: output.Layout{
				Title:        fmt.Sprintf("Fingerprints seen from ≥ %d unique IPs", a.minIPs),
				KeyHeaders:   []string{"Fingerprint"},
				KeyMinWidths: []int{47},
				MetricHeader: "IPs",
				MetricWidth:  8,
				Order:        output.OrderByMetric,
			},
		}, nil

	case TaskTopCommands:
		return &Pipeline{
			Task:       task,
			Grammar:    extractor.GrammarShellCommand,
			Aggregator: aggregator.NewCounter(eventKey),
			Layout: output.Layout{
				Title:        "Top shell commands",
				KeyHeaders:   []string{"Command"},
				MetricHeader: "Count",
				MetricWidth:  8,
				Order:        output.OrderByMetric,
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownTask, task)
	}
}

// eventKey counts failed logins by source IP and shell commands by their text.
func eventKey(ev extractor.Event) (aggregator.Key, bool) {
	switch e := ev.(type) {
	case extractor.FailedLogin:
		return aggregator.Single(e.IP), true
	case extractor.ShellCommand:
		return aggregator.Single(e.Command), true
	default:
		return aggregator.Key{}, false
	}
}

// connectionTime buckets new connections by their timestamp.
func connectionTime(ev extractor.Event) (time.Time, bool) {
	e, ok := ev.(extractor.NewConnection)
	if !ok {
		return time.Time{}, false
	}
	return e.Timestamp, true
}

// distinctIPs groups fingerprints and credential pairs by the IPs that used them.
func distinctIPs(ev extractor.Event) (aggregator.Key, string, bool) {
	switch e := ev.(type) {
	case extractor.ClientFingerprint:
		return aggregator.Single(e.Fingerprint), e.IP, true
	case extractor.SuccessfulLogin:
		return aggregator.Pair(e.Username, e.Password), e.IP, true
	default:
		return aggregator.Key{}, "", false
	}
}

// TaskForGrammar returns the task whose pipeline runs grammar g.
func TaskForGrammar(g extractor.Grammar) (Task, bool) {
	a := &Analyzer{minCount: DefaultMinCount, minIPs: DefaultMinIPs}
	for _, task := range Tasks() {
		p, err := a.newPipeline(task)
		if err == nil && p.Grammar == g {
			return task, true
		}
	}
	return "", false
}
