package enrich

import (
	"encoding/json"
	"strings"

	"github.com/refsift/refsift/internal/record"
)

// Result is the source-neutral shape of one enrichment response,
// consumed immediately by the merge step.
type Result struct {
	Source    record.Source
	Title     string
	Authors   []string // "Last, F." forms
	Year      int
	Venue     string
	Volume    string
	Issue     string
	Pages     string // raw "start-end" as reported
	Publisher string
	ISSN      string
	DOI       string
	URL       string
	Keywords  []string
	Type      string // CSL type, e.g. "journal-article", "proceedings-article"
}

// flexString unmarshals a JSON string or single-element string array.
// doi.org serves titles as strings; CrossRef serves them as arrays.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) > 0 {
			*f = flexString(arr[0])
		}
		return nil
	}
	// Tolerate any other shape; enrichment is best-effort.
	*f = ""
	return nil
}

func (f flexString) String() string { return string(f) }

type cslAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type cslDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d cslDate) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}

// cslWork is the CSL-JSON document served by doi.org.
type cslWork struct {
	Title          flexString  `json:"title"`
	Author         []cslAuthor `json:"author"`
	Issued         cslDate     `json:"issued"`
	ContainerTitle flexString  `json:"container-title"`
	Volume         flexString  `json:"volume"`
	Issue          flexString  `json:"issue"`
	Page           flexString  `json:"page"`
	Publisher      string      `json:"publisher"`
	ISSN           flexString  `json:"ISSN"`
	DOI            string      `json:"DOI"`
	URL            string      `json:"URL"`
	Subject        []string    `json:"subject"`
	Type           string      `json:"type"`
}

func (w *cslWork) toResult(source record.Source) *Result {
	return &Result{
		Source:    source,
		Title:     w.Title.String(),
		Authors:   mapAuthors(w.Author),
		Year:      w.Issued.year(),
		Venue:     w.ContainerTitle.String(),
		Volume:    w.Volume.String(),
		Issue:     w.Issue.String(),
		Pages:     w.Page.String(),
		Publisher: w.Publisher,
		ISSN:      w.ISSN.String(),
		DOI:       w.DOI,
		URL:       w.URL,
		Keywords:  w.Subject,
		Type:      w.Type,
	}
}

// crossrefWork is a works item from the CrossRef REST API. Same fields
// as CSL, but string-valued fields arrive as arrays.
type crossrefWork struct {
	Title           []string    `json:"title"`
	Author          []cslAuthor `json:"author"`
	PublishedPrint  cslDate     `json:"published-print"`
	PublishedOnline cslDate     `json:"published-online"`
	Issued          cslDate     `json:"issued"`
	ContainerTitle  []string    `json:"container-title"`
	Volume          string      `json:"volume"`
	Issue           string      `json:"issue"`
	Page            string      `json:"page"`
	Publisher       string      `json:"publisher"`
	ISSN            []string    `json:"ISSN"`
	DOI             string      `json:"DOI"`
	URL             string      `json:"URL"`
	Subject         []string    `json:"subject"`
	Type            string      `json:"type"`
}

func (w *crossrefWork) toResult() *Result {
	year := w.PublishedPrint.year()
	if year == 0 {
		year = w.PublishedOnline.year()
	}
	if year == 0 {
		year = w.Issued.year()
	}

	return &Result{
		Source:    record.SourceCrossRef,
		Title:     first(w.Title),
		Authors:   mapAuthors(w.Author),
		Year:      year,
		Venue:     first(w.ContainerTitle),
		Volume:    w.Volume,
		Issue:     w.Issue,
		Pages:     w.Page,
		Publisher: w.Publisher,
		ISSN:      strings.Join(w.ISSN, ", "),
		DOI:       w.DOI,
		URL:       w.URL,
		Keywords:  w.Subject,
		Type:      w.Type,
	}
}

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

// mapAuthors renders CSL given/family names as "Family, G." to match
// the locally parsed author form.
func mapAuthors(authors []cslAuthor) []string {
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		family := strings.TrimSpace(a.Family)
		if family == "" {
			continue
		}
		if initials := initialsOf(a.Given); initials != "" {
			out = append(out, family+", "+initials)
		} else {
			out = append(out, family)
		}
	}
	return out
}

func initialsOf(given string) string {
	var parts []string
	for _, tok := range strings.Fields(given) {
		r := []rune(tok)
		if len(r) == 0 {
			continue
		}
		parts = append(parts, string(r[0])+".")
	}
	return strings.Join(parts, " ")
}
