package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/refsift/refsift/internal/record"
)

// DefaultWorkers bounds document-level parallelism in a batch run.
const DefaultWorkers = 4

// BatchResult aggregates per-document outcomes. A failed document is
// reported in its Result's Err and never aborts the batch.
type BatchResult struct {
	Results   []Result     `json:"results"`
	Documents int          `json:"documents"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Stats     record.Stats `json:"stats"`
}

// Records returns all records from successful documents, in input order.
func (b *BatchResult) Records() []record.Record {
	var out []record.Record
	for _, res := range b.Results {
		out = append(out, res.Records...)
	}
	return out
}

// RunBatch processes the given PDFs with a bounded worker pool.
// Document runs are independent and share no mutable state, so they
// parallelize safely. Cancelling the context stops new documents from
// starting; in-flight documents finish their local stages.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string, workers int) *BatchResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		if ctx.Err() != nil {
			results[i] = Result{Path: path, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			res, err := p.Run(gctx, path)
			if err != nil {
				results[i] = Result{Path: path, Err: err}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	g.Wait()

	batch := &BatchResult{Results: results, Documents: len(results)}
	for _, res := range results {
		if res.Err != nil {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
	}
	batch.Stats = record.Summarize(batch.Records())
	return batch
}

// FindPDFs lists the PDF files directly inside dir, sorted by name.
func FindPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
