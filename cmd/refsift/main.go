// Package main provides the refsift CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "refsift",
	Short: "Extract bibliographic references from academic PDFs",
	Long: `refsift extracts the reference section from academic PDFs and turns
it into structured bibliographic records.

The pipeline locates the reference section, splits it into entries,
parses fields with confidence scoring, removes near-duplicates, and
optionally enriches records against doi.org and CrossRef. Records can
be stored in a local SQLite database and exported to BibTeX, RIS,
JSON or CSV. All commands output JSON by default for easy integration
with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
