package enrich

import (
	"reflect"
	"testing"

	"github.com/refsift/refsift/internal/record"
)

func TestMergeAuthoritativeFieldsOverwrite(t *testing.T) {
	rec := record.Record{
		Title:      "Deep Learning Systems",
		Authors:    []string{"Smth, J."}, // OCR slip
		Year:       2021,                 // misparsed
		Venue:      "ICML",
		Provenance: make(record.Provenance),
		Confidence: 0.85,
	}
	res := &Result{
		Source:  record.SourceCrossRef,
		Authors: []string{"Smith, J."},
		Year:    2020,
		Venue:   "Proceedings of ICML",
	}

	Merge(&rec, res)

	if !reflect.DeepEqual(rec.Authors, []string{"Smith, J."}) {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.Year != 2020 {
		t.Errorf("Year = %d", rec.Year)
	}
	if rec.Venue != "Proceedings of ICML" {
		t.Errorf("Venue = %q", rec.Venue)
	}
	if rec.Provenance.Get(record.FieldAuthors) != record.SourceCrossRef {
		t.Error("authors provenance should be crossref")
	}
	if rec.EnrichedBy != record.SourceCrossRef {
		t.Errorf("EnrichedBy = %q", rec.EnrichedBy)
	}
}

func TestMergeEmptyRemoteNeverErases(t *testing.T) {
	rec := record.Record{
		Title:      "Deep Learning Systems",
		Authors:    []string{"Smith, J."},
		Year:       2020,
		Venue:      "ICML",
		Volume:     "4",
		DOI:        "10.1234/dls",
		Provenance: make(record.Provenance),
		Confidence: 1.0,
	}
	before := rec

	Merge(&rec, &Result{Source: record.SourceDOIOrg})

	if rec.Title != before.Title || rec.Year != before.Year ||
		rec.Venue != before.Venue || rec.Volume != before.Volume ||
		rec.DOI != before.DOI || !reflect.DeepEqual(rec.Authors, before.Authors) {
		t.Errorf("empty result changed fields:\nbefore: %+v\nafter:  %+v", before, rec)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0", rec.Confidence)
	}
}

func TestMergeKeywordsFillOnly(t *testing.T) {
	rec := record.Record{
		Title:      "Deep Learning Systems",
		Provenance: make(record.Provenance),
		Confidence: 1.0,
	}

	Merge(&rec, &Result{Source: record.SourceCrossRef, Keywords: []string{"Machine Learning", "Systems"}})

	if !reflect.DeepEqual(rec.Keywords, []string{"Machine Learning", "Systems"}) {
		t.Errorf("Keywords = %v", rec.Keywords)
	}
	if rec.Provenance.Get(record.FieldKeywords) != record.SourceCrossRef {
		t.Error("keywords provenance should be crossref")
	}

	Merge(&rec, &Result{Source: record.SourceDOIOrg, Keywords: []string{"Other"}})

	if !reflect.DeepEqual(rec.Keywords, []string{"Machine Learning", "Systems"}) {
		t.Errorf("existing keywords replaced: %v", rec.Keywords)
	}
}

func TestMergeFillsGapsOnly(t *testing.T) {
	rec := record.Record{
		Title:      "Deep Learning Systems",
		Year:       2020,
		Authors:    []string{"Smith, J."},
		Venue:      "ICML",
		Provenance: make(record.Provenance),
		Confidence: 1.0, // high confidence: fill-only fields keep local values
	}
	res := &Result{
		Source:    record.SourceDOIOrg,
		Title:     "A Different Registry Title",
		Volume:    "11",
		Pages:     "1-9",
		Publisher: "ACM",
		DOI:       "10.1234/dls",
		URL:       "https://doi.org/10.1234/dls",
	}

	Merge(&rec, res)

	if rec.Title != "Deep Learning Systems" {
		t.Errorf("high-confidence local title replaced: %q", rec.Title)
	}
	if rec.Volume != "11" {
		t.Errorf("empty volume not filled: %q", rec.Volume)
	}
	if rec.Pages != (record.Pages{Start: 1, End: 9}) {
		t.Errorf("Pages = %v", rec.Pages)
	}
	if rec.Publisher != "ACM" || rec.DOI != "10.1234/dls" || rec.URL == "" {
		t.Errorf("fill-only fields not filled: %+v", rec)
	}
}

func TestMergeLowConfidenceAcceptsReplacements(t *testing.T) {
	rec := record.Record{
		Title:      "garbled ti tle frag",
		Confidence: 0.35,
		Provenance: make(record.Provenance),
	}
	res := &Result{
		Source: record.SourceCrossRef,
		Title:  "Deep Learning Systems",
	}

	Merge(&rec, res)

	if rec.Title != "Deep Learning Systems" {
		t.Errorf("low-confidence title not replaced: %q", rec.Title)
	}
}

func TestMergeNeverDecreasesCompleteness(t *testing.T) {
	rec := record.Record{
		Title:      "Deep Learning Systems",
		Provenance: make(record.Provenance),
		Confidence: 0.35,
	}
	res := &Result{
		Source:  record.SourceCrossRef,
		Authors: []string{"Smith, J."},
		Year:    2020,
		Venue:   "ICML",
	}

	before := rec.Confidence
	Merge(&rec, res)

	if rec.Confidence < before {
		t.Errorf("confidence decreased: %f -> %f", before, rec.Confidence)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0 after full enrichment", rec.Confidence)
	}
}

func TestMergeTypeOnlyUpgradesMisc(t *testing.T) {
	rec := record.Record{Type: record.TypeMisc, Provenance: make(record.Provenance)}
	Merge(&rec, &Result{Source: record.SourceCrossRef, Type: "journal-article"})
	if rec.Type != record.TypeArticle {
		t.Errorf("Type = %q, want article", rec.Type)
	}

	rec = record.Record{Type: record.TypeInProceedings, Provenance: make(record.Provenance)}
	Merge(&rec, &Result{Source: record.SourceCrossRef, Type: "journal-article"})
	if rec.Type != record.TypeInProceedings {
		t.Errorf("locally classified type overwritten: %q", rec.Type)
	}
}

func TestParsePages(t *testing.T) {
	tests := []struct {
		in   string
		want record.Pages
	}{
		{"1-9", record.Pages{Start: 1, End: 9}},
		{"42", record.Pages{Start: 42, End: 42}},
		{"", record.Pages{}},
		{"ix-xii", record.Pages{}},
	}
	for _, tt := range tests {
		if got := parsePages(tt.in); got != tt.want {
			t.Errorf("parsePages(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
