package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <cite-key>",
	Short: "Delete a stored reference",
	Long: `Delete one reference from the database by its citation key.

Examples:
  refsift delete smith2020`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	key := args[0]

	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	removed, err := db.Delete(key)
	if err != nil {
		exitWithError(ExitError, "deleting: %v", err)
	}
	if !removed {
		exitWithError(ExitDataError, "no reference with key %q", key)
	}

	if humanOutput {
		fmt.Printf("deleted %s\n", key)
	} else {
		outputJSON(StatusResponse{Status: "deleted", Path: key})
	}
	return nil
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored references",
	Long:  `Delete every reference from the database. Processing and export history are kept.`,
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting references: %v", err)
	}
	if err := db.Clear(); err != nil {
		exitWithError(ExitError, "clearing: %v", err)
	}

	if humanOutput {
		fmt.Printf("deleted %d references\n", count)
	} else {
		outputJSON(StatusResponse{Status: "cleared", Count: count})
	}
	return nil
}
