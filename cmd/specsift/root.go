package main

import (
	"github.com/spf13/cobra"

	"github.com/specsift/specsift/internal/api"
	"github.com/specsift/specsift/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "specsift",
	Short: "Page triage and LED display spec extraction for construction RFPs",
	Long: `Specsift triages construction RFP documents and extracts LED display
specifications from the relevant pages using LLM backends.

The pipeline includes:
  - Keyword-based page scoring with keep/maybe/discard recommendations
  - Text versus drawing page classification
  - Batched text extraction via a workspace chat backend
  - Per-page vision extraction for drawings and schedules`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.specsift/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "specsift home directory (default: ~/.specsift)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
