package main

import (
	"fmt"
	"strings"

	"github.com/refsift/refsift/internal/record"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored references",
	Long: `Search stored references by title, author or venue.

Matching is a case-insensitive substring match; results come back
highest confidence first.

Examples:
  refsift search "deep learning"
  refsift search smith --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	records, err := db.Search(query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(records) == 0 {
			fmt.Printf("No matches for %q\n", query)
		} else {
			fmt.Printf("%d matches:\n\n", len(records))
			for _, rec := range records {
				fmt.Printf("  [%.2f] %s\n", rec.Confidence, truncateString(rec.Title, ListTitleMaxLen))
				if len(rec.Authors) > 0 {
					fmt.Printf("         %s (%d)\n", rec.AuthorString(), rec.Year)
				}
			}
		}
	} else {
		if records == nil {
			records = []record.Record{}
		}
		outputJSON(records)
	}

	return nil
}
