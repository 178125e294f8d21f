package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", DefaultSearchLimit, "Maximum history entries to show")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	stats, err := db.DatabaseStats()
	if err != nil {
		exitWithError(ExitError, "computing stats: %v", err)
	}

	if humanOutput {
		fmt.Printf("references:      %d\n", stats.Records)
		fmt.Printf("avg confidence:  %.2f\n", stats.AvgConfidence)
		fmt.Printf("with DOI:        %d\n", stats.WithDOI)
		fmt.Printf("enriched:        %d\n", stats.Enriched)
		fmt.Printf("documents:       %d\n", stats.Documents)
		fmt.Printf("exports:         %d\n", stats.Exports)
	} else {
		outputJSON(stats)
	}
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show document processing history",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	entries, err := db.ListProcessingHistory(historyLimit)
	if err != nil {
		exitWithError(ExitError, "listing history: %v", err)
	}

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No documents processed yet")
		}
		for _, e := range entries {
			if e.Status != "ok" {
				fmt.Printf("%s  %s  failed: %s\n", e.ProcessedAt, e.PDFPath, e.Error)
				continue
			}
			fmt.Printf("%s  %s  %d records, avg confidence %.2f\n",
				e.ProcessedAt, e.PDFPath, e.RecordCount, e.AvgConfidence)
		}
	} else {
		outputJSON(entries)
	}
	return nil
}
