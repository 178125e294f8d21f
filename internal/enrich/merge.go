package enrich

import (
	"strconv"
	"strings"

	"github.com/refsift/refsift/internal/fields"
	"github.com/refsift/refsift/internal/record"
)

// Authoritative fields overwrite even a non-empty local value: the
// registries are more reliable than heuristic PDF parsing for these.
// Everything else only fills gaps (or replaces values on records whose
// overall parse confidence is low).
//
// The invariant either way: an empty remote value never erases a
// non-empty local one, so enrichment can only increase completeness.
func Merge(rec *record.Record, res *Result) {
	lowConf := rec.Confidence < record.LowConfidenceThreshold

	if len(res.Authors) > 0 {
		rec.Authors = res.Authors
		rec.Provenance.Set(record.FieldAuthors, res.Source)
	}
	if res.Year != 0 {
		rec.Year = res.Year
		rec.Provenance.Set(record.FieldYear, res.Source)
	}
	if res.Venue != "" {
		rec.Venue = res.Venue
		rec.Provenance.Set(record.FieldVenue, res.Source)
	}
	if res.ISSN != "" {
		rec.ISSN = res.ISSN
		rec.Provenance.Set(record.FieldISSN, res.Source)
	}

	if res.Title != "" && (rec.Title == "" || lowConf) {
		rec.Title = res.Title
		rec.Provenance.Set(record.FieldTitle, res.Source)
	}
	if res.Volume != "" && (rec.Volume == "" || lowConf) {
		rec.Volume = res.Volume
		rec.Provenance.Set(record.FieldVolume, res.Source)
	}
	if res.Issue != "" && (rec.Issue == "" || lowConf) {
		rec.Issue = res.Issue
		rec.Provenance.Set(record.FieldIssue, res.Source)
	}
	if p := parsePages(res.Pages); !p.IsZero() && (rec.Pages.IsZero() || lowConf) {
		rec.Pages = p
		rec.Provenance.Set(record.FieldPages, res.Source)
	}
	if res.Publisher != "" && rec.Publisher == "" {
		rec.Publisher = res.Publisher
		rec.Provenance.Set(record.FieldPublisher, res.Source)
	}
	if res.DOI != "" && rec.DOI == "" {
		rec.DOI = res.DOI
		rec.Provenance.Set(record.FieldDOI, res.Source)
	}
	if res.URL != "" && rec.URL == "" {
		rec.URL = res.URL
		rec.Provenance.Set(record.FieldURL, res.Source)
	}
	if len(res.Keywords) > 0 && len(rec.Keywords) == 0 {
		rec.Keywords = res.Keywords
		rec.Provenance.Set(record.FieldKeywords, res.Source)
	}

	if t := mapCSLType(res.Type); t != "" && rec.Type == record.TypeMisc {
		rec.Type = t
	}

	rec.EnrichedBy = res.Source
	rec.Confidence = fields.Score(rec)
}

// parsePages parses the registry page form "start-end" (or a single
// page number).
func parsePages(s string) record.Pages {
	s = strings.TrimSpace(s)
	if s == "" {
		return record.Pages{}
	}

	parts := strings.SplitN(s, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return record.Pages{}
	}
	if len(parts) == 1 {
		return record.Pages{Start: start, End: start}
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || end < start {
		return record.Pages{Start: start, End: start}
	}
	return record.Pages{Start: start, End: end}
}

// mapCSLType maps CSL work types onto citation types. Unknown types
// return "" and leave the local classification alone.
func mapCSLType(t string) record.CitationType {
	switch t {
	case "journal-article", "article-journal":
		return record.TypeArticle
	case "proceedings-article", "paper-conference":
		return record.TypeInProceedings
	case "book", "monograph", "edited-book":
		return record.TypeBook
	case "report":
		return record.TypeTechReport
	case "dissertation", "thesis":
		return record.TypePhDThesis
	default:
		return ""
	}
}
