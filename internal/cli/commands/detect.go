package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/honeylog/pkg/config"
	"github.com/ccollicutt/honeylog/pkg/detector"
	"github.com/ccollicutt/honeylog/pkg/extractor"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	SampleSize  int
	ShowAll     bool
	ConfigFile  string
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <logfile>",
		Short: "Show which reports a log file supports",
		Long: `Sample a log file and check each line against every grammar.

Reports how many sampled lines each grammar matched, with an example line,
and suggests the analyze command for the best match. Use this to confirm a
log is in the expected format, or to test grammar overrides from --config.

Optionally generates a starter config file with --write-config.

Example:
  honeylog detect cowrie.log
  honeylog detect --sample 5000 --all cowrie.log
  honeylog detect --config custom.yaml sshd.log
  honeylog detect -w honeylog.yaml cowrie.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every matching grammar, not just the best match")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML config file with grammar overrides")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Check file exists
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	d := detector.New(
		detector.WithSampleSize(opts.SampleSize),
		detector.WithExtractor(cfg.Extractor()),
	)

	// Run detection
	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(cmd.OutOrStdout(), result, logFile, opts.WriteConfig); err != nil {
			return err
		}
	}

	outputDetectText(cmd.OutOrStdout(), result, logFile, opts)
	return nil
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) {
	fmt.Fprintln(w, "=== Grammar Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines matched: %d\n", result.MatchedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No grammar matched.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The file may not be a cowrie log, or the events are further in.")
		fmt.Fprintln(w, "Try a larger --sample, or override grammars in a config file.")
		return
	}

	// Show best match
	best := result.BestMatch()
	printMatch(w, best, result.SampledLines)

	fmt.Fprintln(w, "--- Suggested command ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  honeylog analyze %s --task %s\n", logFile, best.Task)
	fmt.Fprintln(w)

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other grammars matched ---")
		for _, m := range result.Matches[1:] {
			printMatch(w, &m, result.SampledLines)
		}
	}
}

func printMatch(w io.Writer, m *detector.GrammarMatch, sampled int) {
	fmt.Fprintf(w, "Grammar: %s (task %s)\n", m.Grammar, m.Task)
	fmt.Fprintf(w, "Coverage: %.1f%% (%d/%d lines matched)\n", m.Coverage*100, m.MatchCount, sampled)
	fmt.Fprintf(w, "Sample match:\n  %s\n", m.SampleLine)
	fmt.Fprintln(w)
}

// writeStarterConfig generates a starter config file listing the defaults.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, logFile, configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	content := generateStarterConfig(result, logFile)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(result *detector.DetectionResult, logFile string) string {
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}

	content := fmt.Sprintf(`# honeylog configuration
# Generated by: honeylog detect %s
# Grammars matched: %d of %d sampled lines

# Minimum failed logins per IP (failed-logins)
min_count: %d

# Minimum unique IPs per fingerprint (identify-bots)
min_ips: %d

# Maximum rows per report, 0 for all
limit: %d

# Replace a grammar's pattern. Each pattern must keep the named groups
# shown in the default.
# grammars:
`, absLogFile, result.MatchedLines, result.SampledLines,
		config.DefaultMinCount, config.DefaultMinIPs, config.DefaultLimit)

	defaults := extractor.DefaultPatterns()
	for _, g := range extractor.Grammars() {
		content += fmt.Sprintf("#   %s: '%s'\n", g, defaults[g])
	}

	return content
}
