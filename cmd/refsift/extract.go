package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/refsift/refsift/internal/enrich"
	"github.com/refsift/refsift/internal/export"
	"github.com/refsift/refsift/internal/pipeline"
	"github.com/refsift/refsift/internal/record"
	"github.com/refsift/refsift/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	extractEnrich    bool
	extractNoEnrich  bool
	extractSave      bool
	extractWorkers   int
	extractFormats   []string
	extractOutputDir string
	extractThreshold float64
)

func init() {
	// Load .env if present (for REFSIFT_MAILTO)
	_ = godotenv.Load()

	extractCmd.Flags().BoolVar(&extractEnrich, "enrich", false, "Enrich records via doi.org/CrossRef (overrides config)")
	extractCmd.Flags().BoolVar(&extractNoEnrich, "no-enrich", false, "Skip enrichment (overrides config)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Save extracted records to the database")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", pipeline.DefaultWorkers, "Parallel documents when processing a folder")
	extractCmd.Flags().StringSliceVar(&extractFormats, "export", nil, "Export formats to write (bibtex, ris, json, csv)")
	extractCmd.Flags().StringVar(&extractOutputDir, "output-dir", ".", "Directory for exported files")
	extractCmd.Flags().Float64Var(&extractThreshold, "similarity", 0, "Duplicate similarity threshold (0 = config default)")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <pdf-or-folder>",
	Short: "Extract references from a PDF or a folder of PDFs",
	Long: `Extract references from a PDF or from every PDF in a folder.

Folders are processed with a bounded worker pool; a document that fails
is reported and skipped, never aborting the batch. Interrupting a run
stops enrichment cleanly and keeps the records parsed so far.

Examples:
  refsift extract paper.pdf
  refsift extract paper.pdf --enrich --save
  refsift extract papers/ --workers 8 --export bibtex,json --output-dir out/`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	threshold := cfg.SimilarityThreshold
	if extractThreshold > 0 {
		threshold = extractThreshold
	}

	enrichOn := cfg.EnrichmentEnabled
	if extractEnrich {
		enrichOn = true
	}
	if extractNoEnrich {
		enrichOn = false
	}

	formats, err := parseFormats(extractFormats)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	opts := []pipeline.Option{pipeline.WithSimilarityThreshold(threshold)}
	if enrichOn {
		mailto := cfg.Mailto
		if mailto == "" {
			mailto = os.Getenv("REFSIFT_MAILTO")
		}
		client := enrich.NewClient(
			enrich.WithRateLimit(rate.Limit(cfg.RateLimit)),
			enrich.WithMailto(mailto),
		)
		opts = append(opts, pipeline.WithEnricher(
			enrich.NewEnricher(client, enrich.WithTitleThreshold(cfg.TitleMatchThreshold)),
		))
	}
	if humanOutput {
		opts = append(opts, pipeline.WithObserver(progressObserver()))
	}
	p := pipeline.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := args[0]
	info, err := os.Stat(input)
	if err != nil {
		exitWithError(ExitDataError, "reading input: %v", err)
	}

	var batch *pipeline.BatchResult
	if info.IsDir() {
		paths, err := pipeline.FindPDFs(input)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		if len(paths) == 0 {
			exitWithError(ExitDataError, "no PDF files in %s", input)
		}
		batch = p.RunBatch(ctx, paths, extractWorkers)
	} else {
		res, err := p.Run(ctx, input)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		batch = &pipeline.BatchResult{Results: []pipeline.Result{*res}, Documents: 1, Succeeded: 1}
		batch.Stats = record.Summarize(res.Records)
	}

	records := batch.Records()

	if extractSave {
		saveBatch(batch, enrichOn)
	}
	for _, format := range formats {
		writeExport(records, format, extractOutputDir, extractSave)
	}

	if humanOutput {
		printBatchHuman(batch)
	} else {
		outputJSON(batch)
	}
	return nil
}

// progressObserver reports per-stage progress on stderr so stdout stays
// reserved for results.
func progressObserver() *pipeline.Observer {
	return &pipeline.Observer{
		DocumentStarted: func(path string) {
			fmt.Fprintf(os.Stderr, "processing %s\n", path)
		},
		SectionNotFound: func(path string) {
			fmt.Fprintf(os.Stderr, "  %s: no reference section found\n", filepath.Base(path))
		},
		EntriesParsed: func(path string, count int) {
			fmt.Fprintf(os.Stderr, "  %s: parsed %d entries\n", filepath.Base(path), count)
		},
		EnrichmentFailed: func(path string, ordinal int, err error) {
			fmt.Fprintf(os.Stderr, "  %s: entry %d not enriched: %v\n", filepath.Base(path), ordinal, err)
		},
	}
}

func parseFormats(names []string) ([]export.Format, error) {
	var formats []export.Format
	for _, name := range names {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func saveBatch(batch *pipeline.BatchResult, enriched bool) {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(cfg)
	defer db.Close()

	for _, res := range batch.Results {
		entry := storage.ProcessingEntry{
			PDFPath:     res.Path,
			RecordCount: len(res.Records),
			TextQuality: res.TextQuality,
			Enriched:    enriched,
			DurationMS:  res.DurationMS,
		}
		if res.Err != nil {
			entry.Status = "failed"
			entry.Error = res.Err.Error()
		} else if len(res.Records) > 0 {
			if _, err := db.SaveAll(res.Records, res.Path); err != nil {
				exitWithError(ExitError, "saving records: %v", err)
			}
			entry.AvgConfidence = res.Stats().AvgConfidence
		}
		if err := db.RecordProcessing(entry); err != nil {
			exitWithError(ExitError, "recording history: %v", err)
		}
	}
}

func writeExport(records []record.Record, format export.Format, dir string, recordHistory bool) {
	payload, err := export.Export(records, format)
	if err != nil {
		exitWithError(ExitError, "exporting: %v", err)
	}
	path := filepath.Join(dir, "references."+format.Extension())
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}
	if recordHistory {
		cfg := mustLoadConfig()
		db := mustOpenDatabase(cfg)
		if err := db.RecordExport(format, path, len(records)); err != nil {
			db.Close()
			exitWithError(ExitError, "recording export history: %v", err)
		}
		db.Close()
	}
	if humanOutput {
		outputHuman("wrote %s (%d records)\n", path, len(records))
	}
}

func printBatchHuman(batch *pipeline.BatchResult) {
	for _, res := range batch.Results {
		if res.Err != nil {
			outputHuman("%s: failed: %v\n", res.Path, res.Err)
			continue
		}
		if !res.SectionFound {
			outputHuman("%s: no reference section\n", res.Path)
			continue
		}
		outputHuman("%s: %d records (text quality %.2f, %d enriched)\n",
			res.Path, len(res.Records), res.TextQuality, res.Enriched)
		for _, rec := range res.Records {
			title := truncateString(rec.Title, ListTitleMaxLen)
			if title == "" {
				title = truncateString(rec.RawText, ListTitleMaxLen)
			}
			outputHuman("  [%.2f] %s\n", rec.Confidence, title)
		}
	}
	s := batch.Stats
	outputHuman("\n%d records total, avg confidence %.2f, %d with DOI, %d low confidence\n",
		s.Total, s.AvgConfidence, s.WithDOI, s.LowConfidence)
	if failed := batch.Failed; failed > 0 {
		outputHuman("%d documents failed\n", failed)
	}
}
