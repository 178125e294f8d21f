package enrich

import (
	"context"

	"github.com/refsift/refsift/internal/dedupe"
	"github.com/refsift/refsift/internal/record"
)

// DefaultTitleThreshold is the similarity a CrossRef search hit must
// reach against the locally parsed title before its metadata is
// trusted. Tunable via WithTitleThreshold.
const DefaultTitleThreshold = 0.85

// Enricher augments records with external metadata. Best-effort by
// contract: no method ever fails the pipeline, a record that cannot be
// enriched is returned as parsed.
type Enricher struct {
	client         *Client
	titleThreshold float64
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithTitleThreshold overrides the search-match similarity threshold.
func WithTitleThreshold(t float64) EnricherOption {
	return func(e *Enricher) { e.titleThreshold = t }
}

// NewEnricher creates an Enricher around the given client.
func NewEnricher(client *Client, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		client:         client,
		titleThreshold: DefaultTitleThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich attempts to augment one record. Sources are tried in priority
// order and the first success wins: doi.org resolution when a DOI is
// present (CrossRef DOI lookup as fallback), otherwise a CrossRef
// title search gated by the similarity threshold. On any failure the
// record comes back unchanged with EnrichedBy empty.
func (e *Enricher) Enrich(ctx context.Context, rec record.Record) record.Record {
	out, _ := e.TryEnrich(ctx, rec)
	return out
}

// TryEnrich is Enrich with the failure surfaced alongside the
// unchanged record, for callers that report enrichment outcomes.
func (e *Enricher) TryEnrich(ctx context.Context, rec record.Record) (record.Record, error) {
	res, err := e.lookup(ctx, &rec)
	if err != nil {
		return rec, err
	}
	Merge(&rec, res)
	return rec, nil
}

// EnrichAll enriches a slice of records in place order. The context is
// checked between records so a caller can abort a long run without
// corrupting records already produced; records past the cancellation
// point are returned unenriched.
func (e *Enricher) EnrichAll(ctx context.Context, records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, rec := range records {
		if ctx.Err() != nil {
			out[i] = rec
			continue
		}
		out[i] = e.Enrich(ctx, rec)
	}
	return out
}

func (e *Enricher) lookup(ctx context.Context, rec *record.Record) (*Result, error) {
	if rec.DOI != "" {
		res, err := e.client.ResolveDOI(ctx, rec.DOI)
		if err == nil {
			return res, nil
		}
		// doi.org may not serve CSL for every registrant; the CrossRef
		// works endpoint covers most of the rest.
		res, err = e.client.LookupDOI(ctx, rec.DOI)
		if err == nil {
			return res, nil
		}
		return nil, err
	}

	if rec.Title == "" {
		return nil, ErrNoMatch
	}

	results, err := e.client.SearchTitle(ctx, rec.Title, DefaultSearchRows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	best := results[0]
	if dedupe.Similarity(rec.Title, best.Title) < e.titleThreshold {
		return nil, ErrNoMatch
	}
	return best, nil
}
