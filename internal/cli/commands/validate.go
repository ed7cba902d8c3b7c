package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/honeylog/pkg/config"
	"github.com/ccollicutt/honeylog/pkg/extractor"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a honeylog configuration file without reading any logs.

Checks:
  - YAML syntax and field names
  - Thresholds (min_count, min_ips, limit >= 0)
  - Grammar overrides compile and define their named capture groups`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  min_count: %d\n", cfg.MinCount)
	fmt.Fprintf(w, "  min_ips:   %d\n", cfg.MinIPs)
	if cfg.Limit > 0 {
		fmt.Fprintf(w, "  limit:     %d\n", cfg.Limit)
	} else {
		fmt.Fprintf(w, "  limit:     none\n")
	}

	// List grammars
	fmt.Fprintf(w, "\nGrammars:\n")
	for _, g := range extractor.Grammars() {
		source := "default"
		if _, ok := cfg.Grammars[string(g)]; ok {
			source = "override"
		}
		fmt.Fprintf(w, "  %-19s [%s] %s\n", g, source, cfg.Extractor().Pattern(g))
	}

	return nil
}
