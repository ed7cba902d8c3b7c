package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/honeylog/pkg/analyzer"
	"github.com/ccollicutt/honeylog/pkg/config"
	"github.com/ccollicutt/honeylog/pkg/output"
	"github.com/ccollicutt/honeylog/pkg/parser"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Task       taskValue
	MinCount   int
	MinIPs     int
	Limit      int
	ConfigFile string
	Quiet      bool
	Verbose    bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <logfile>",
		Short: "Summarize a honeypot log file",
		Long: `Run one report over a honeypot log file and print it as a table.

Tasks:
  failed-logins     Failed login attempts per IP, at least --min-count each
  connections       New connections per minute, oldest first
  successful-creds  Accepted username/password pairs by number of distinct IPs
  identify-bots     Fingerprints used by at least --min-ips distinct IPs
  top-commands      Shell commands by frequency

Output is a one-line title, a header row, a dashed separator and one row
per group. --quiet drops the title line; an input with no matching events
prints only the title (unless --quiet), header and separator. A threshold
of 0 or 1 keeps every group.

Thresholds and the row limit can also come from a config file (--config) or
the HONEYLOG_MIN_COUNT, HONEYLOG_MIN_IPS and HONEYLOG_LIMIT environment
variables. Flags given on the command line take precedence.

Exit codes:
  0 - Report printed
  2 - Invalid arguments, unreadable file or configuration error

Example:
  honeylog analyze cowrie.log --task failed-logins --min-count 5
  honeylog analyze cowrie.log --task top-commands --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().Var(&opts.Task, "task", "Report to run ("+analyzer.TaskNames()+")")
	cmd.Flags().IntVar(&opts.MinCount, "min-count", config.DefaultMinCount, "Minimum failed logins per IP (failed-logins, 0 for all)")
	cmd.Flags().IntVar(&opts.MinIPs, "min-ips", config.DefaultMinIPs, "Minimum unique IPs per fingerprint (identify-bots, 0 for all)")
	cmd.Flags().IntVar(&opts.Limit, "limit", config.DefaultLimit, "Maximum rows to print (0 for all)")
	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Print the table without the title line")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Print run statistics to stderr")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cmd, cfg, opts)
	slog.Debug("config loaded", "path", opts.ConfigFile,
		"min_count", cfg.MinCount, "min_ips", cfg.MinIPs, "limit", cfg.Limit)

	// Create analyzer
	a, err := analyzer.NewAnalyzer(
		analyzer.WithMinCount(cfg.MinCount),
		analyzer.WithMinIPs(cfg.MinIPs),
		analyzer.WithLimit(cfg.Limit),
		analyzer.WithExtractor(cfg.Extractor()),
	)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	// Open up front so a missing file fails before anything is printed
	source := parser.NewFileSource(logFile)
	if err := source.Open(); err != nil {
		return err
	}
	defer source.Close()

	// Run analysis
	result, err := a.Analyze(ctx, opts.Task.task, source)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := result.Report()
	slog.Debug("analysis complete",
		"task", report.Metadata.Task,
		"lines", report.Summary.LinesProcessed,
		"matched", report.Summary.LinesMatched,
		"groups", report.Summary.Groups,
		"reported", report.Summary.GroupsReported)

	// Output report
	var formatter output.Formatter = output.NewTextFormatter(output.FormatOptions{Quiet: opts.Quiet})
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if opts.Verbose {
		printStats(cmd, logFile, report)
	}

	return nil
}

// applyFlagOverrides lets flags that were set explicitly win over the config
// file and environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, opts *AnalyzeOptions) {
	if cmd.Flags().Changed("min-count") {
		cfg.MinCount = opts.MinCount
	}
	if cmd.Flags().Changed("min-ips") {
		cfg.MinIPs = opts.MinIPs
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limit = opts.Limit
	}
}

func printStats(cmd *cobra.Command, logFile string, report *output.Report) {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Source: %s\n", logFile)
	fmt.Fprintf(w, "Lines processed: %d\n", report.Summary.LinesProcessed)
	fmt.Fprintf(w, "Lines matched: %d\n", report.Summary.LinesMatched)
	fmt.Fprintf(w, "Groups: %d (%d reported)\n", report.Summary.Groups, report.Summary.GroupsReported)
	fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
}
