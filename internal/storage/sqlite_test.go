package storage

import (
	"path/filepath"
	"testing"

	"github.com/refsift/refsift/internal/export"
	"github.com/refsift/refsift/internal/record"
)

// setupTestDB creates a database preloaded with test records.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	records := []record.Record{
		{
			Ordinal:    1,
			RawText:    `[1] J. Smith, "Deep Learning Systems," in Proc. ICML, 2020, pp. 1-9.`,
			Number:     "1",
			Authors:    []string{"Smith, J."},
			Title:      "Deep Learning Systems",
			Year:       2020,
			Venue:      "ICML",
			Pages:      record.Pages{Start: 1, End: 9},
			Keywords:   []string{"Machine Learning", "Systems"},
			Type:       record.TypeInProceedings,
			Confidence: 1.0,
			EnrichedBy: record.SourceCrossRef,
			Provenance: record.Provenance{record.FieldTitle: record.SourceLocal},
		},
		{
			Ordinal:    2,
			RawText:    `[2] A. Jones, "Convex Methods," Journal of Optimization, 2019.`,
			Number:     "2",
			Authors:    []string{"Jones, A."},
			Title:      "Convex Methods",
			Year:       2019,
			Venue:      "Journal of Optimization",
			DOI:        "10.1234/convex",
			Type:       record.TypeArticle,
			Confidence: 0.85,
		},
		{
			Ordinal:    3,
			RawText:    "B. Brown, unparsed fragment",
			Title:      "Unparsed Fragment Entry",
			Type:       record.TypeMisc,
			Confidence: 0.35,
		},
	}

	n, err := db.SaveAll(records, "papers/test.pdf")
	if err != nil {
		t.Fatalf("saving records: %v", err)
	}
	if n != 3 {
		t.Fatalf("saved %d records, want 3", n)
	}
	return db
}

func TestSaveAndGetByKey(t *testing.T) {
	db := setupTestDB(t)

	rec, err := db.GetByKey("smith2020")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("record not found")
	}
	if rec.Title != "Deep Learning Systems" {
		t.Errorf("Title = %q", rec.Title)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Smith, J." {
		t.Errorf("Authors = %v", rec.Authors)
	}
	if rec.Pages.Start != 1 || rec.Pages.End != 9 {
		t.Errorf("Pages = %v", rec.Pages)
	}
	if rec.EnrichedBy != record.SourceCrossRef {
		t.Errorf("EnrichedBy = %q", rec.EnrichedBy)
	}
	if len(rec.Keywords) != 2 || rec.Keywords[0] != "Machine Learning" {
		t.Errorf("Keywords = %v", rec.Keywords)
	}
	if rec.Provenance.Get(record.FieldTitle) != record.SourceLocal {
		t.Errorf("provenance lost in round-trip: %v", rec.Provenance)
	}

	missing, err := db.GetByKey("nobody9999")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("unknown key should return nil")
	}
}

func TestSaveAllUpsert(t *testing.T) {
	db := setupTestDB(t)

	// Saving the same citation keys again replaces rows instead of
	// duplicating them.
	updated := []record.Record{{
		Ordinal:    1,
		RawText:    "updated raw",
		Authors:    []string{"Smith, J."},
		Title:      "Deep Learning Systems, Second Edition",
		Year:       2020,
		Type:       record.TypeBook,
		Confidence: 0.85,
	}}
	if _, err := db.SaveAll(updated, "papers/test.pdf"); err != nil {
		t.Fatal(err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 after upsert", count)
	}

	rec, err := db.GetByKey("smith2020")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Title != "Deep Learning Systems, Second Edition" {
		t.Errorf("Title = %q, want updated title", rec.Title)
	}
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"title match", "Convex", 1},
		{"author match", "Smith", 1},
		{"venue match", "Optimization", 1},
		{"case insensitive", "convex", 1},
		{"no match", "zebra", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Search(tt.query, 10)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) = %d results, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestSearchOrdersByConfidence(t *testing.T) {
	db := setupTestDB(t)

	// Matches all three records through title/raw substrings.
	got, err := db.Search("e", 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Errorf("results not ordered by confidence: %f before %f",
				got[i-1].Confidence, got[i].Confidence)
		}
	}
}

func TestListAllAndDelete(t *testing.T) {
	db := setupTestDB(t)

	all, err := db.ListAll(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("ListAll = %d records, want 3", len(all))
	}

	limited, err := db.ListAll(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("ListAll(2) = %d records, want 2", len(limited))
	}

	removed, err := db.Delete("jones2019")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("Delete should report a removed row")
	}
	removed, err = db.Delete("jones2019")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second Delete should report no removed row")
	}

	count, _ := db.Count()
	if count != 2 {
		t.Errorf("count = %d, want 2 after delete", count)
	}
}

func TestClear(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Clear(); err != nil {
		t.Fatal(err)
	}
	count, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestProcessingHistory(t *testing.T) {
	db := setupTestDB(t)

	ok := ProcessingEntry{
		PDFPath:       "papers/a.pdf",
		RecordCount:   10,
		AvgConfidence: 0.8,
		TextQuality:   0.9,
		Enriched:      true,
		DurationMS:    1200,
	}
	if err := db.RecordProcessing(ok); err != nil {
		t.Fatal(err)
	}
	failed := ProcessingEntry{
		PDFPath: "papers/b.pdf",
		Status:  "failed",
		Error:   "not a valid PDF",
	}
	if err := db.RecordProcessing(failed); err != nil {
		t.Fatal(err)
	}

	entries, err := db.ListProcessingHistory(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Newest first.
	if entries[0].PDFPath != "papers/b.pdf" {
		t.Errorf("first entry = %q, want papers/b.pdf", entries[0].PDFPath)
	}
	if entries[0].Status != "failed" || entries[0].Error != "not a valid PDF" {
		t.Errorf("failure row = %q/%q", entries[0].Status, entries[0].Error)
	}
	if entries[1].Status != "ok" {
		t.Errorf("Status = %q, want ok", entries[1].Status)
	}
	if entries[1].Error != "" {
		t.Errorf("Error = %q, want empty", entries[1].Error)
	}
	if entries[1].DurationMS != 1200 {
		t.Errorf("DurationMS = %d, want 1200", entries[1].DurationMS)
	}
	if !entries[1].Enriched {
		t.Error("enriched flag lost in round-trip")
	}
}

func TestDatabaseStats(t *testing.T) {
	db := setupTestDB(t)

	entry := ProcessingEntry{PDFPath: "papers/test.pdf", RecordCount: 3, AvgConfidence: 0.73, TextQuality: 0.9, Enriched: true}
	if err := db.RecordProcessing(entry); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordExport(export.FormatBibTeX, "refs.bib", 3); err != nil {
		t.Fatal(err)
	}

	stats, err := db.DatabaseStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Records != 3 {
		t.Errorf("Records = %d, want 3", stats.Records)
	}
	if stats.WithDOI != 1 {
		t.Errorf("WithDOI = %d, want 1", stats.WithDOI)
	}
	if stats.Enriched != 1 {
		t.Errorf("Enriched = %d, want 1", stats.Enriched)
	}
	if stats.Documents != 1 || stats.Exports != 1 {
		t.Errorf("Documents/Exports = %d/%d, want 1/1", stats.Documents, stats.Exports)
	}
	want := (1.0 + 0.85 + 0.35) / 3
	if diff := stats.AvgConfidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AvgConfidence = %f, want %f", stats.AvgConfidence, want)
	}
}
