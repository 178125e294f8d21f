// Package record defines the core domain types for extracted references.
package record

import (
	"fmt"
	"strings"
)

// CitationType is the bibliographic category of a reference. It governs
// the BibTeX entry type and the RIS type tag on export.
type CitationType string

const (
	TypeArticle       CitationType = "article"
	TypeInProceedings CitationType = "inproceedings"
	TypeBook          CitationType = "book"
	TypeTechReport    CitationType = "techreport"
	TypePhDThesis     CitationType = "phdthesis"
	TypeMisc          CitationType = "misc"
)

// Pages is a start/end page range. Zero values mean unknown.
type Pages struct {
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// IsZero reports whether no page range was extracted.
func (p Pages) IsZero() bool {
	return p.Start == 0 && p.End == 0
}

// String renders the range as "start-end", or just "start" for a
// single-page reference.
func (p Pages) String() string {
	if p.IsZero() {
		return ""
	}
	if p.End == 0 || p.End == p.Start {
		return fmt.Sprintf("%d", p.Start)
	}
	return fmt.Sprintf("%d-%d", p.Start, p.End)
}

// Record is a single extracted reference.
//
// Identity is the ordinal (position within the source section) plus the
// DOI when one is present; the DOI is the preferred dedup and merge key.
// Records are created by the field extractor, removed (never mutated) by
// the deduplicator, field-merged by the enricher, and read-only for
// exporters.
type Record struct {
	Ordinal int    `json:"ordinal"`
	RawText string `json:"raw_text"`
	Number  string `json:"number,omitempty"` // marker from the source, e.g. "1" from "[1]"

	Authors []string `json:"authors"` // normalized "Last, F." forms, in citation order
	Title   string   `json:"title"`
	Year    int      `json:"year,omitempty"` // 0 = unknown
	Venue   string   `json:"venue,omitempty"`
	Volume  string   `json:"volume,omitempty"`
	Issue   string   `json:"issue,omitempty"`
	Pages   Pages    `json:"pages"`

	Publisher string   `json:"publisher,omitempty"`
	ISSN      string   `json:"issn,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	URL       string   `json:"url,omitempty"`
	Keywords  []string `json:"keywords,omitempty"` // subject terms, supplied by enrichment only

	Type       CitationType `json:"type"`
	Confidence float64      `json:"confidence"`

	// EnrichedBy names the external source that last enriched this record,
	// empty when the record carries only locally parsed data.
	EnrichedBy Source     `json:"enriched_by,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// Complete reports whether the record meets the minimum bar for a usable
// citation: a title plus at least one of authors or year. Incomplete
// records are still exported, flagged by their low confidence.
func (r *Record) Complete() bool {
	return r.Title != "" && (len(r.Authors) > 0 || r.Year != 0)
}

// AuthorString joins the author list in "A and B and C" form.
func (r *Record) AuthorString() string {
	return strings.Join(r.Authors, " and ")
}

// FirstAuthorSurname returns the surname of the first author, or "".
// Authors are stored as "Last, F." so the surname is the part before the
// first comma.
func (r *Record) FirstAuthorSurname() string {
	if len(r.Authors) == 0 {
		return ""
	}
	name := r.Authors[0]
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}
