// Package pipeline orchestrates the per-document extraction stages:
// section extraction, entry splitting, field parsing, deduplication
// and optional enrichment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/refsift/refsift/internal/dedupe"
	"github.com/refsift/refsift/internal/enrich"
	"github.com/refsift/refsift/internal/fields"
	"github.com/refsift/refsift/internal/pdftext"
	"github.com/refsift/refsift/internal/record"
	"github.com/refsift/refsift/internal/splitter"
)

// Pipeline runs the extraction stages for one document at a time. A
// Pipeline holds no per-document state, so one instance may serve
// concurrent documents; the enricher's rate limiter is the only state
// shared across runs and it serializes itself.
type Pipeline struct {
	enricher  *enrich.Enricher
	threshold float64
	observer  *Observer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEnricher enables the enrichment stage. A nil enricher leaves
// records as parsed.
func WithEnricher(e *enrich.Enricher) Option {
	return func(p *Pipeline) { p.enricher = e }
}

// WithSimilarityThreshold overrides the deduplication threshold.
func WithSimilarityThreshold(t float64) Option {
	return func(p *Pipeline) { p.threshold = t }
}

// WithObserver attaches progress callbacks.
func WithObserver(o *Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// New creates a Pipeline with the default deduplication threshold and
// no enrichment.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{threshold: dedupe.DefaultThreshold}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the outcome of one document run.
type Result struct {
	Path         string          `json:"path"`
	Records      []record.Record `json:"records"`
	SectionFound bool            `json:"section_found"`
	TextQuality  float64         `json:"text_quality"`
	Enriched     int             `json:"enriched"`
	DurationMS   int64           `json:"duration_ms"`
	Err          error           `json:"-"`
}

// Stats summarizes the run's records.
func (r *Result) Stats() record.Stats {
	return record.Summarize(r.Records)
}

// Run processes one PDF. A document without a recognizable reference
// section yields an empty result, not an error; errors are reserved
// for unreadable or invalid inputs. The context bounds the enrichment
// stage; the local stages are not interruptible.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	p.observer.documentStarted(path)
	start := time.Now()

	res := &Result{Path: path, Records: []record.Record{}}

	section, err := pdftext.ExtractSection(path)
	if err != nil {
		if errors.Is(err, pdftext.ErrSectionNotFound) {
			p.observer.sectionNotFound(path)
			res.DurationMS = time.Since(start).Milliseconds()
			p.observer.documentDone(*res)
			return res, nil
		}
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	res.SectionFound = true
	res.TextQuality = section.Quality
	p.observer.sectionFound(path, section.Quality)

	entries := splitter.Split(section.Text)
	records := make([]record.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, fields.Parse(e))
	}
	p.observer.entriesParsed(path, len(records))

	records = dedupe.Dedupe(records, p.threshold)

	if p.enricher != nil {
		records = p.enrichAll(ctx, path, records, res)
	}

	res.Records = records
	res.DurationMS = time.Since(start).Milliseconds()
	p.observer.documentDone(*res)
	return res, nil
}

func (p *Pipeline) enrichAll(ctx context.Context, path string, records []record.Record, res *Result) []record.Record {
	out := make([]record.Record, len(records))
	for i, rec := range records {
		if ctx.Err() != nil {
			out[i] = rec
			continue
		}
		enriched, err := p.enricher.TryEnrich(ctx, rec)
		out[i] = enriched
		if err != nil {
			p.observer.enrichmentFailed(path, rec.Ordinal, err)
			continue
		}
		res.Enriched++
		p.observer.recordEnriched(path, rec.Ordinal, enriched.EnrichedBy)
	}
	return out
}
