package extractor

import (
	"fmt"
	"regexp"
	"strings"
)

// Grammar names a pattern that extracts one event kind.
type Grammar string

const (
	GrammarFailedLogin       Grammar = "failed-login"
	GrammarNewConnection     Grammar = "new-connection"
	GrammarSuccessfulLogin   Grammar = "successful-login"
	GrammarClientFingerprint Grammar = "client-fingerprint"
	GrammarShellCommand      Grammar = "shell-command"
)

// Capture group names used by the grammars.
const (
	GroupIP          = "ip"
	GroupTimestamp   = "ts"
	GroupUsername    = "user"
	GroupPassword    = "password"
	GroupFingerprint = "fingerprint"
	GroupCommand     = "command"
)

// transportPrefix matches the cowrie SSH transport marker and captures the peer address.
const transportPrefix = `\[HoneyPotSSHTransport,\d+,(?P<ip>\d+\.\d+\.\d+\.\d+)\].*?`

// Default patterns for each grammar.
const (
	DefaultFailedLoginPattern = transportPrefix +
		`login attempt \[.*?/.*?\] failed`

	DefaultNewConnectionPattern = `(?P<ts>\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?)Z ` +
		`\[cowrie\.ssh\.factory\.CowrieSSHFactory\] New connection: ` +
		`(?P<ip>\d+\.\d+\.\d+\.\d+):\d+`

	DefaultSuccessfulLoginPattern = transportPrefix +
		`login attempt \[(?P<user>[^/]+)/(?P<password>[^\]]+)\] succeeded`

	DefaultClientFingerprintPattern = transportPrefix +
		`SSH client hassh fingerprint: (?P<fingerprint>[0-9a-f:]{32})`

	DefaultShellCommandPattern = `CMD: (?P<command>.+)`
)

// Grammars returns every grammar in a fixed order.
func Grammars() []Grammar {
	return []Grammar{
		GrammarFailedLogin,
		GrammarNewConnection,
		GrammarSuccessfulLogin,
		GrammarClientFingerprint,
		GrammarShellCommand,
	}
}

// DefaultPatterns returns the built-in pattern for every grammar.
func DefaultPatterns() map[Grammar]string {
	return map[Grammar]string{
		GrammarFailedLogin:       DefaultFailedLoginPattern,
		GrammarNewConnection:     DefaultNewConnectionPattern,
		GrammarSuccessfulLogin:   DefaultSuccessfulLoginPattern,
		GrammarClientFingerprint: DefaultClientFingerprintPattern,
		GrammarShellCommand:      DefaultShellCommandPattern,
	}
}

// RequiredGroups returns the named capture groups a pattern for g must define.
func (g Grammar) RequiredGroups() []string {
	switch g {
	case GrammarFailedLogin:
		return []string{GroupIP}
	case GrammarNewConnection:
		return []string{GroupTimestamp, GroupIP}
	case GrammarSuccessfulLogin:
		return []string{GroupIP, GroupUsername, GroupPassword}
	case GrammarClientFingerprint:
		return []string{GroupIP, GroupFingerprint}
	case GrammarShellCommand:
		return []string{GroupCommand}
	default:
		return nil
	}
}

// Valid reports whether g is a known grammar.
func (g Grammar) Valid() bool {
	return g.RequiredGroups() != nil
}

// CompilePattern compiles pattern for g and checks that it defines the
// grammar's required capture groups.
func CompilePattern(g Grammar, pattern string) (*regexp.Regexp, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("unknown grammar %q", g)
	}

	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("pattern must not be empty")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	for _, name := range g.RequiredGroups() {
		if re.SubexpIndex(name) < 0 {
			return nil, fmt.Errorf("pattern must define capture group (?P<%s>...)", name)
		}
	}

	return re, nil
}
