package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/refsift/refsift/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormats []string
	exportOutput  string
)

func init() {
	exportCmd.Flags().StringSliceVar(&exportFormats, "format", nil, "Formats to write (bibtex, ris, json, csv); defaults from config")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Output file (single format) or directory; stdout when empty")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored references",
	Long: `Export all stored references to bibliography formats.

With a single format and no --output the payload goes to stdout. With
multiple formats --output names a directory and one file is written
per format.

Examples:
  refsift export --format bibtex > refs.bib
  refsift export --format bibtex --output refs.bib
  refsift export --format bibtex,ris,csv --output out/`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	names := exportFormats
	if len(names) == 0 {
		names = cfg.ExportFormats
	}
	formats, err := parseFormats(names)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db := mustOpenDatabase(cfg)
	defer db.Close()

	records, err := db.ListAll(0)
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}
	if len(records) == 0 {
		exitWithError(ExitDataError, "no records in database")
	}

	payloads, err := export.ExportMultiple(records, formats)
	if err != nil {
		exitWithError(ExitError, "exporting: %v", err)
	}

	if exportOutput == "" && len(formats) == 1 {
		os.Stdout.Write(payloads[formats[0]])
		return nil
	}
	if exportOutput == "" {
		exitWithError(ExitError, "--output is required with multiple formats")
	}

	for _, f := range formats {
		path := exportOutput
		if len(formats) > 1 || isDir(exportOutput) {
			if err := os.MkdirAll(exportOutput, 0o755); err != nil {
				exitWithError(ExitError, "creating output directory: %v", err)
			}
			path = filepath.Join(exportOutput, "references."+f.Extension())
		}
		if err := os.WriteFile(path, payloads[f], 0o644); err != nil {
			exitWithError(ExitError, "writing %s: %v", path, err)
		}
		if err := db.RecordExport(f, path, len(records)); err != nil {
			exitWithError(ExitError, "recording export: %v", err)
		}
		if humanOutput {
			outputHuman("wrote %s (%d records)\n", path, len(records))
		}
	}
	if !humanOutput {
		outputJSON(StatusResponse{Status: "exported", Count: len(records)})
	}
	return nil
}

func isDir(path string) bool {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
