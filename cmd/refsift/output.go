package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/refsift/refsift/internal/config"
	"github.com/refsift/refsift/internal/storage"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands
	ListTitleMaxLen    = 60 // Title truncation in list/search output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// mustLoadConfig loads the config file or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the extraction database or exits. The parent
// directory is created on first use.
func mustOpenDatabase(cfg *config.Config) *storage.DB {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			exitWithError(ExitConfigError, "creating database directory: %v", err)
		}
	}
	db, err := storage.OpenDB(cfg.DatabasePath)
	if err != nil {
		exitWithError(ExitConfigError, "opening database: %v", err)
	}
	return db
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
