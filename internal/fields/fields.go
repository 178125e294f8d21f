// Package fields parses a candidate reference string into a structured
// record. Parsing never fails: malformed input yields a record with
// empty fields and a correspondingly low confidence, because partial
// data beats dropped entries.
package fields

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/refsift/refsift/internal/record"
	"github.com/refsift/refsift/internal/splitter"
)

var (
	bracketMarker = regexp.MustCompile(`^\[(\d+)\]\s*`)
	dotMarker     = regexp.MustCompile(`^(\d+)\.\s+`)

	// doiPattern: 10.XXXX/suffix, the registrant prefix is 4-9 digits.
	doiPattern = regexp.MustCompile(`(?i)(?:doi:\s*)?\b(10\.\d{4,9}/[^\s<>"{}|\\^~\[\]]+)`)
	urlPattern = regexp.MustCompile(`https?://[^\s]+`)

	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// quotePairs are tried in order when looking for a quoted title.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"}, // curly double
	{"‘", "’"}, // curly single
}

// Parse extracts structured fields from one candidate entry.
func Parse(e splitter.Entry) record.Record {
	rec := record.Record{
		Ordinal:    e.Ordinal,
		RawText:    e.Text,
		Type:       record.TypeMisc,
		Provenance: make(record.Provenance),
	}

	working := e.Text

	// Leading entry marker: "[12]" or "12. ".
	if m := bracketMarker.FindStringSubmatch(working); m != nil {
		rec.Number = m[1]
		working = working[len(m[0]):]
	} else if m := dotMarker.FindStringSubmatch(working); m != nil {
		rec.Number = m[1]
		working = working[len(m[0]):]
	}

	// Identifiers first; their spans are removed so a DOI's digits can
	// never be mistaken for a year or page range.
	if m := doiPattern.FindStringSubmatchIndex(working); m != nil {
		doi := strings.TrimRight(working[m[2]:m[3]], ".,;:)")
		rec.DOI = doi
		rec.Provenance.Set(record.FieldDOI, record.SourceLocal)
		working = working[:m[0]] + working[m[1]:]
	}
	if m := urlPattern.FindStringIndex(working); m != nil {
		url := strings.TrimRight(working[m[0]:m[1]], ".,;:)")
		rec.URL = url
		rec.Provenance.Set(record.FieldURL, record.SourceLocal)
		working = working[:m[0]] + working[m[1]:]
	}

	title, titleStart, titleEnd := extractTitle(working)
	if title != "" {
		rec.Title = title
		rec.Provenance.Set(record.FieldTitle, record.SourceLocal)
	}

	// Year is searched after the title to skip numerals inside it; when
	// no title was found the whole entry is scanned.
	yearRegion := working
	if titleEnd > 0 {
		yearRegion = working[titleEnd:]
	}
	if y := extractYear(yearRegion); y != 0 {
		rec.Year = y
		rec.Provenance.Set(record.FieldYear, record.SourceLocal)
	} else if y := extractYear(working); y != 0 {
		rec.Year = y
		rec.Provenance.Set(record.FieldYear, record.SourceLocal)
	}

	authorRegion := working
	if titleStart >= 0 {
		authorRegion = working[:titleStart]
	}
	if authors := extractAuthors(authorRegion); len(authors) > 0 {
		rec.Authors = authors
		rec.Provenance.Set(record.FieldAuthors, record.SourceLocal)
	}

	venueRegion := ""
	if titleEnd > 0 {
		venueRegion = working[titleEnd:]
	}
	v := extractVenue(venueRegion)
	if v.venue != "" {
		rec.Venue = v.venue
		rec.Provenance.Set(record.FieldVenue, record.SourceLocal)
	}
	if rec.Volume = extractVolume(working); rec.Volume != "" {
		rec.Provenance.Set(record.FieldVolume, record.SourceLocal)
	}
	if rec.Issue = extractIssue(working); rec.Issue != "" {
		rec.Provenance.Set(record.FieldIssue, record.SourceLocal)
	}
	if rec.Pages = extractPages(working, rec.Year); !rec.Pages.IsZero() {
		rec.Provenance.Set(record.FieldPages, record.SourceLocal)
	}

	rec.Type = classify(working, v, rec.Volume, rec.Issue)
	rec.Confidence = Score(&rec)

	return rec
}

// extractTitle returns the title and its [start,end) span in the text.
// First choice is a quoted span; the fallback is the longest
// sentence-like period-bounded span that does not look like an author
// list. Returns start -1 when nothing was found.
func extractTitle(text string) (string, int, int) {
	for _, q := range quotePairs {
		open := strings.Index(text, q[0])
		if open < 0 {
			continue
		}
		rest := text[open+len(q[0]):]
		closing := strings.Index(rest, q[1])
		if closing <= 0 {
			continue
		}
		title := cleanField(rest[:closing])
		if title == "" {
			continue
		}
		return title, open, open + len(q[0]) + closing + len(q[1])
	}

	// Sentence-like fallback: longest period-bounded span with at least
	// three words that is not dominated by name-list commas.
	best, bestStart := "", -1
	offset := 0
	for _, seg := range strings.Split(text, ". ") {
		segStart := offset
		offset += len(seg) + 2
		s := cleanField(seg)
		if len(strings.Fields(s)) < 3 || looksLikeAuthorList(s) {
			continue
		}
		if len(s) > len(best) {
			best, bestStart = s, segStart
		}
	}
	if best == "" {
		return "", -1, -1
	}
	return best, bestStart, bestStart + len(best)
}

// looksLikeAuthorList reports whether a span is mostly comma-separated
// short name tokens rather than running prose.
func looksLikeAuthorList(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return false
	}
	short := 0
	for _, p := range parts {
		if len(strings.Fields(strings.TrimSpace(p))) <= 2 {
			short++
		}
	}
	return short*2 > len(parts)
}

// extractYear returns the first plausible publication year in text.
// Plausible means within [1900, current year + 1]; forthcoming papers
// cite next year's proceedings.
func extractYear(text string) int {
	maxYear := time.Now().Year() + 1
	for _, tok := range yearPattern.FindAllString(text, -1) {
		y, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if y >= 1900 && y <= maxYear {
			return y
		}
	}
	return 0
}

// cleanField strips wrapping punctuation and collapses whitespace.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ",;:")
	s = strings.TrimSuffix(s, ".")
	return strings.Join(strings.Fields(s), " ")
}
