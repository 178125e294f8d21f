package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/refsift/refsift/internal/record"
	"golang.org/x/time/rate"
)

func newRecord(title, doi string) record.Record {
	return record.Record{
		Title:      title,
		DOI:        doi,
		Provenance: make(record.Provenance),
		Confidence: 0.35,
	}
}

func TestEnrichPrefersDOIResolution(t *testing.T) {
	doiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "Deep Learning Systems", "issued": {"date-parts": [[2020]]}}`))
	}))
	defer doiSrv.Close()
	crossrefSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("crossref must not be called when doi.org succeeds")
	}))
	defer crossrefSrv.Close()

	e := NewEnricher(newTestClient(doiSrv.URL, crossrefSrv.URL))
	got := e.Enrich(context.Background(), newRecord("", "10.1234/dls"))

	if got.EnrichedBy != record.SourceDOIOrg {
		t.Errorf("EnrichedBy = %q, want doi.org", got.EnrichedBy)
	}
	if got.Year != 2020 {
		t.Errorf("Year = %d", got.Year)
	}
}

func TestEnrichFallsBackToCrossRefLookup(t *testing.T) {
	doiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer doiSrv.Close()
	crossrefSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"title": ["Deep Learning Systems"], "issued": {"date-parts": [[2020]]}}}`))
	}))
	defer crossrefSrv.Close()

	e := NewEnricher(newTestClient(doiSrv.URL, crossrefSrv.URL))
	got := e.Enrich(context.Background(), newRecord("", "10.1234/dls"))

	if got.EnrichedBy != record.SourceCrossRef {
		t.Errorf("EnrichedBy = %q, want crossref", got.EnrichedBy)
	}
}

func TestEnrichTitleSearchGatedBySimilarity(t *testing.T) {
	crossrefSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"items": [
			{"title": ["An Entirely Unrelated Work"], "DOI": "10.9/zzz"}
		]}}`))
	}))
	defer crossrefSrv.Close()

	e := NewEnricher(newTestClient("", crossrefSrv.URL))
	got := e.Enrich(context.Background(), newRecord("Deep Learning Systems", ""))

	if got.EnrichedBy != record.SourceNone {
		t.Errorf("dissimilar search hit accepted: EnrichedBy = %q", got.EnrichedBy)
	}
	if got.DOI != "" {
		t.Errorf("DOI = %q, want empty", got.DOI)
	}
}

func TestEnrichTitleSearchAcceptsCloseMatch(t *testing.T) {
	crossrefSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"items": [
			{"title": ["Deep Learning Systems"], "DOI": "10.1234/dls", "issued": {"date-parts": [[2020]]}}
		]}}`))
	}))
	defer crossrefSrv.Close()

	e := NewEnricher(newTestClient("", crossrefSrv.URL))
	got := e.Enrich(context.Background(), newRecord("Deep Learning Systems", ""))

	if got.EnrichedBy != record.SourceCrossRef {
		t.Errorf("EnrichedBy = %q, want crossref", got.EnrichedBy)
	}
	if got.DOI != "10.1234/dls" {
		t.Errorf("DOI = %q", got.DOI)
	}
	if got.Provenance.Get(record.FieldDOI) != record.SourceCrossRef {
		t.Error("DOI provenance should record the search source")
	}
}

func TestEnrichFailureLeavesRecordUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewEnricher(newTestClient(srv.URL, srv.URL))
	in := newRecord("Deep Learning Systems", "10.1234/dls")
	got := e.Enrich(context.Background(), in)

	if got.EnrichedBy != record.SourceNone {
		t.Errorf("EnrichedBy = %q, want none", got.EnrichedBy)
	}
	if got.Title != in.Title || got.DOI != in.DOI {
		t.Error("failed enrichment must not change the record")
	}
}

func TestEnrichEmptyRecordNoMatch(t *testing.T) {
	crossrefSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a record with neither DOI nor title")
	}))
	defer crossrefSrv.Close()

	e := NewEnricher(newTestClient("", crossrefSrv.URL))
	_, err := e.TryEnrich(context.Background(), newRecord("", ""))
	if err != ErrNoMatch {
		t.Errorf("error = %v, want ErrNoMatch", err)
	}
}

func TestEnrichAllStopsOnCancellation(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"title": "Anything", "issued": {"date-parts": [[2020]]}}`))
	}))
	defer srv.Close()

	e := NewEnricher(NewClient(
		WithBaseURLs(srv.URL, srv.URL),
		WithRateLimit(rate.Inf),
	))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []record.Record{
		newRecord("", "10.1/a"),
		newRecord("", "10.1/b"),
		newRecord("", "10.1/c"),
	}
	out := e.EnrichAll(ctx, records)

	if len(out) != 3 {
		t.Fatalf("got %d records, want all 3 back", len(out))
	}
	for i, rec := range out {
		if rec.EnrichedBy != record.SourceNone {
			t.Errorf("record %d enriched after cancellation", i)
		}
	}
	if calls != 0 {
		t.Errorf("%d requests issued after cancellation, want 0", calls)
	}
}
