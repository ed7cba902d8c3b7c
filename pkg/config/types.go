// Package config provides configuration loading and validation for honeylog.
package config

import (
	"github.com/ccollicutt/honeylog/pkg/extractor"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// MinCount is the minimum failed-login count per IP (failed-logins).
	MinCount int `yaml:"min_count,omitempty"`

	// MinIPs is the minimum number of unique IPs per fingerprint (identify-bots).
	MinIPs int `yaml:"min_ips,omitempty"`

	// Limit caps the number of rows in every report. 0 means unlimited.
	Limit int `yaml:"limit,omitempty"`

	// Grammars replaces the built-in pattern of a grammar, keyed by grammar
	// name (failed-login, new-connection, successful-login,
	// client-fingerprint, shell-command). Each pattern must define the
	// grammar's named capture groups.
	Grammars map[string]string `yaml:"grammars,omitempty"`

	// extractor is built from Grammars during validation.
	extractor *extractor.Extractor
}

// Extractor returns the extractor built from the grammar overrides.
// It is nil until the config has been validated.
func (c *Config) Extractor() *extractor.Extractor {
	return c.extractor
}
