package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/honeylog/pkg/extractor"
)

// Load reads and validates a configuration file. An empty path yields the
// defaults. Environment overrides are applied in both cases.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty file decodes to io.EOF and keeps the defaults.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and compiles grammar overrides.
func Validate(cfg *Config) error {
	if cfg.MinCount < 0 {
		return fmt.Errorf("min_count: must be >= 0, got %d", cfg.MinCount)
	}
	if cfg.MinIPs < 0 {
		return fmt.Errorf("min_ips: must be >= 0, got %d", cfg.MinIPs)
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("limit: must be >= 0, got %d", cfg.Limit)
	}

	overrides := make(map[extractor.Grammar]string, len(cfg.Grammars))
	for _, name := range sortedKeys(cfg.Grammars) {
		g := extractor.Grammar(name)
		if !g.Valid() {
			return fmt.Errorf("grammars.%s: unknown grammar", name)
		}
		if _, err := extractor.CompilePattern(g, cfg.Grammars[name]); err != nil {
			return fmt.Errorf("grammars.%s: %w", name, err)
		}
		overrides[g] = cfg.Grammars[name]
	}

	x, err := extractor.NewWithOverrides(overrides)
	if err != nil {
		return fmt.Errorf("grammars: %w", err)
	}
	cfg.extractor = x

	return nil
}

// sortedKeys returns map keys in order so validation errors are deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
