package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valtlai/agent-history/internal"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agent-history",
	Short: "Aggregate AI-assistant conversation history for a project",
	Long: `agent-history collects AI-assistant conversation history for a software
project from several incompatible on-disk storage formats and merges it
into one chronologically ordered record set.

Sources ingested when present:
  • Plain-text transcripts (one conversation per file)
  • A read-only SQLite tracking store
  • JSON chat documents of arbitrary shape
  • Markdown dialogue exports inside the project tree
  • Per-conversation artifact bundles

Missing or malformed sources are skipped; an empty history is a valid
result, never an error.

Quick Start:
  agent-history history /path/to/project          # Styled summary
  agent-history history /path/to/project --format json
  agent-history sources /path/to/project          # Which sources exist
  agent-history serve --addr :8574                # HTTP endpoint`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file overriding source locations")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

func loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return internal.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
