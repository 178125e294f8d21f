package main

import (
	"fmt"

	"github.com/refsift/refsift/internal/record"
	"github.com/spf13/cobra"
)

var listLimit int

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored references",
	Long: `List all references in the database.

Examples:
  refsift list
  refsift list --limit 100`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	records, err := db.ListAll(listLimit)
	if err != nil {
		exitWithError(ExitError, "listing references: %v", err)
	}

	total, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting references: %v", err)
	}

	if humanOutput {
		if len(records) == 0 {
			fmt.Println("No references in database")
		} else {
			if listLimit > 0 && listLimit < total {
				fmt.Printf("%d references (showing first %d):\n\n", total, len(records))
			} else {
				fmt.Printf("%d references in database:\n\n", len(records))
			}
			for _, rec := range records {
				fmt.Printf("  [%.2f] %-6d %s\n", rec.Confidence, rec.Year, truncateString(rec.Title, ListTitleMaxLen))
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
