// Package detector samples a log file and reports which grammars match it,
// so a user can tell which reports will produce output before running them.
package detector

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/ccollicutt/honeylog/pkg/analyzer"
	"github.com/ccollicutt/honeylog/pkg/extractor"
	"github.com/ccollicutt/honeylog/pkg/parser"
)

// DefaultSampleSize is the number of non-empty lines sampled by default.
const DefaultSampleSize = 1000

// DetectionResult holds the result of sampling a log file.
type DetectionResult struct {
	Matches      []GrammarMatch // Grammars that matched, most matches first
	SampledLines int            // Number of non-empty lines sampled
	MatchedLines int            // Number of lines matched by at least one grammar
}

// GrammarMatch reports how often one grammar matched the sample.
type GrammarMatch struct {
	Grammar    extractor.Grammar
	Task       analyzer.Task // Report that consumes this grammar
	MatchCount int           // Number of sampled lines that matched
	Coverage   float64       // 0.0 to 1.0 (share of sampled lines matched)
	SampleLine string        // First line that matched
}

// Detector checks sampled lines against every grammar.
type Detector struct {
	extractor  *extractor.Extractor
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithExtractor replaces the default grammar set.
func WithExtractor(x *extractor.Extractor) Option {
	return func(d *Detector) {
		if x != nil {
			d.extractor = x
		}
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.extractor == nil {
		d.extractor = extractor.New()
	}
	return d
}

// DetectFromFile samples a log file and reports grammar matches.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines checks each line against every grammar.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	counts := make(map[extractor.Grammar]*GrammarMatch)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		matched := false
		for _, g := range extractor.Grammars() {
			if _, ok := d.extractor.Extract(line, g); !ok {
				continue
			}
			matched = true

			m := counts[g]
			if m == nil {
				task, _ := analyzer.TaskForGrammar(g)
				m = &GrammarMatch{Grammar: g, Task: task, SampleLine: line}
				counts[g] = m
			}
			m.MatchCount++
		}
		if matched {
			result.MatchedLines++
		}
	}

	// Keep grammar order for the stable sort below
	for _, g := range extractor.Grammars() {
		m := counts[g]
		if m == nil {
			continue
		}
		m.Coverage = float64(m.MatchCount) / float64(result.SampledLines)
		result.Matches = append(result.Matches, *m)
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchCount > result.Matches[j].MatchCount
	})

	return result
}

// sampleFile reads up to sampleSize non-empty lines from a file.
// Uses simple head sampling for efficiency.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	source := parser.NewFileSource(path)
	defer source.Close()

	var lines []string
	for len(lines) < d.sampleSize {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line.Content) != "" {
			lines = append(lines, line.Content)
		}
	}

	return lines, nil
}

// BestMatch returns the grammar with the most matches, or nil if none matched.
func (r *DetectionResult) BestMatch() *GrammarMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one grammar matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
