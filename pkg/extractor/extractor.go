package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// timestampLayout parses the seconds-precision prefix of a cowrie timestamp.
const timestampLayout = "2006-01-02T15:04:05"

// Extractor applies compiled grammars to log lines.
type Extractor struct {
	patterns map[Grammar]*regexp.Regexp
}

// New creates an Extractor using the default pattern for every grammar.
func New() *Extractor {
	x, err := NewWithOverrides(nil)
	if err != nil {
		// Default patterns are constants; failing here is a programming error.
		panic(err)
	}
	return x
}

// NewWithOverrides creates an Extractor where the given patterns replace the
// defaults for their grammars. Each override must be non-empty, compile and
// define the grammar's required capture groups.
func NewWithOverrides(overrides map[Grammar]string) (*Extractor, error) {
	x := &Extractor{patterns: make(map[Grammar]*regexp.Regexp, len(Grammars()))}

	for g, pattern := range DefaultPatterns() {
		if override, ok := overrides[g]; ok {
			pattern = override
		}
		re, err := CompilePattern(g, pattern)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: %w", g, err)
		}
		x.patterns[g] = re
	}

	for g := range overrides {
		if !g.Valid() {
			return nil, fmt.Errorf("unknown grammar %q", g)
		}
	}

	return x, nil
}

// Pattern returns the compiled pattern used for g, or nil for an unknown grammar.
func (x *Extractor) Pattern(g Grammar) *regexp.Regexp {
	return x.patterns[g]
}

// Extract applies grammar g to line. It returns false when the line does not
// match; that is the normal outcome for most lines, not an error.
func (x *Extractor) Extract(line string, g Grammar) (Event, bool) {
	re := x.patterns[g]
	if re == nil {
		return nil, false
	}

	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	group := func(name string) string {
		return m[re.SubexpIndex(name)]
	}

	switch g {
	case GrammarFailedLogin:
		return FailedLogin{IP: group(GroupIP)}, true

	case GrammarNewConnection:
		ts, err := ParseTimestamp(group(GroupTimestamp))
		if err != nil {
			return nil, false
		}
		return NewConnection{Timestamp: ts, IP: group(GroupIP)}, true

	case GrammarSuccessfulLogin:
		return SuccessfulLogin{
			IP:       group(GroupIP),
			Username: group(GroupUsername),
			Password: group(GroupPassword),
		}, true

	case GrammarClientFingerprint:
		return ClientFingerprint{
			IP:          group(GroupIP),
			Fingerprint: group(GroupFingerprint),
		}, true

	case GrammarShellCommand:
		return ShellCommand{Command: strings.TrimSpace(group(GroupCommand))}, true
	}

	return nil, false
}

// ParseTimestamp parses a cowrie timestamp such as 2023-01-01T10:15:02.123456.
// Only the first 19 characters are used; the fractional part and any zone
// suffix are discarded. The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) < len(timestampLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q too short", s)
	}

	ts, err := time.Parse(timestampLayout, s[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return ts, nil
}
