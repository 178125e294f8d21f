package main

import (
	"fmt"
	"strings"

	"github.com/refsift/refsift/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration, including defaults.

The config file lives at ` + "`~/.config/refsift/config.yml`" + ` (honoring
XDG_CONFIG_HOME) and supports:

  database_path: ~/.local/share/refsift/refsift.db
  similarity_threshold: 0.85
  enrichment_enabled: true
  rate_limit: 5
  mailto: you@example.org
  title_match_threshold: 0.85
  export_formats: [bibtex, json]`,
	RunE: runConfig,
}

// configView is the JSON rendering of the effective config.
type configView struct {
	Path                string   `json:"path"`
	DatabasePath        string   `json:"database_path"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
	EnrichmentEnabled   bool     `json:"enrichment_enabled"`
	RateLimit           float64  `json:"rate_limit"`
	Mailto              string   `json:"mailto,omitempty"`
	TitleMatchThreshold float64  `json:"title_match_threshold"`
	ExportFormats       []string `json:"export_formats"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	view := configView{
		Path:                config.Path(),
		DatabasePath:        cfg.DatabasePath,
		SimilarityThreshold: cfg.SimilarityThreshold,
		EnrichmentEnabled:   cfg.EnrichmentEnabled,
		RateLimit:           cfg.RateLimit,
		Mailto:              cfg.Mailto,
		TitleMatchThreshold: cfg.TitleMatchThreshold,
		ExportFormats:       cfg.ExportFormats,
	}

	if humanOutput {
		fmt.Printf("config file:           %s\n", view.Path)
		fmt.Printf("database:              %s\n", view.DatabasePath)
		fmt.Printf("similarity threshold:  %.2f\n", view.SimilarityThreshold)
		fmt.Printf("enrichment:            %v\n", view.EnrichmentEnabled)
		fmt.Printf("rate limit:            %.1f req/s\n", view.RateLimit)
		fmt.Printf("title match threshold: %.2f\n", view.TitleMatchThreshold)
		fmt.Printf("export formats:        %s\n", strings.Join(view.ExportFormats, ", "))
	} else {
		outputJSON(view)
	}
	return nil
}
