package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default values for configuration.
const (
	DefaultMinCount = 1
	DefaultMinIPs   = 3
	DefaultLimit    = 0
)

// Environment variable names.
const (
	EnvMinCount = "HONEYLOG_MIN_COUNT"
	EnvMinIPs   = "HONEYLOG_MIN_IPS"
	EnvLimit    = "HONEYLOG_LIMIT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MinCount: DefaultMinCount,
		MinIPs:   DefaultMinIPs,
		Limit:    DefaultLimit,
		Grammars: map[string]string{},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	overrides := []struct {
		env    string
		target *int
	}{
		{EnvMinCount, &c.MinCount},
		{EnvMinIPs, &c.MinIPs},
		{EnvLimit, &c.Limit},
	}

	for _, o := range overrides {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", o.env, v)
		}
		*o.target = n
	}

	return nil
}
