package analyzer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/honeylog/pkg/aggregator"
	"github.com/ccollicutt/honeylog/pkg/extractor"
	"github.com/ccollicutt/honeylog/pkg/output"
	"github.com/ccollicutt/honeylog/pkg/parser"
)

// Default thresholds.
const (
	DefaultMinCount = 1
	DefaultMinIPs   = 3
)

// Analyzer runs report tasks over log sources.
type Analyzer struct {
	extractor *extractor.Extractor

	// Options
	minCount int
	minIPs   int
	limit    int
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithMinCount sets the minimum failed-login count per IP. 0 and 1 both keep every IP.
func WithMinCount(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.minCount = n
	}
}

// WithMinIPs sets the minimum number of unique IPs per fingerprint. 0 and 1 both keep every fingerprint.
func WithMinIPs(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.minIPs = n
	}
}

// WithLimit keeps at most n rows per report; 0 keeps all.
func WithLimit(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.limit = n
	}
}

// WithExtractor replaces the default grammar set.
func WithExtractor(x *extractor.Extractor) AnalyzerOption {
	return func(a *Analyzer) {
		if x != nil {
			a.extractor = x
		}
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		minCount: DefaultMinCount,
		minIPs:   DefaultMinIPs,
	}

	// Apply options
	for _, opt := range opts {
		opt(a)
	}

	if a.extractor == nil {
		a.extractor = extractor.New()
	}

	if a.minCount < 0 {
		return nil, fmt.Errorf("min count must be >= 0, got %d", a.minCount)
	}
	if a.minIPs < 0 {
		return nil, fmt.Errorf("min IPs must be >= 0, got %d", a.minIPs)
	}
	if a.limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0, got %d", a.limit)
	}

	return a, nil
}

// Pipeline returns the plan the analyzer would run for task.
func (a *Analyzer) Pipeline(task Task) (*Pipeline, error) {
	return a.newPipeline(task)
}

// Analyze reads every line from source, runs it through the task's grammar
// and aggregator, applies the task's threshold and orders the result.
// A read error aborts the run; lines that do not match are skipped.
func (a *Analyzer) Analyze(ctx context.Context, task Task, source parser.LogSource) (*Result, error) {
	p, err := a.newPipeline(task)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Task: task,
		Stats: Stats{
			StartTime: time.Now(),
		},
	}

	p.Aggregator.Reset()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading log source: %w", err)
		}

		if result.Source == "" {
			result.Source = line.Source
		}
		result.Stats.LinesProcessed++

		ev, ok := a.extractor.Extract(line.Content, p.Grammar)
		if !ok {
			continue
		}
		result.Stats.LinesMatched++
		p.Aggregator.Aggregate(ev)
	}

	metrics := p.Aggregator.Finalize()
	result.Stats.Groups = len(metrics)

	if p.MinMetric > 0 {
		metrics = aggregator.AtLeast(metrics, p.MinMetric)
	}

	result.Metrics = metrics
	result.Table = output.NewTable(p.Layout, metrics, a.limit)
	result.Stats.EndTime = time.Now()

	return result, nil
}
