package export

import (
	"fmt"
	"strings"

	"github.com/refsift/refsift/internal/record"
)

// ToBibTeX converts records to a BibTeX bibliography. Citation keys
// are derived from the first author's surname and the year, with
// collision suffixes assigned in input order.
func ToBibTeX(records []record.Record) []byte {
	keys := AssignKeys(records)
	var entries []string
	for i, rec := range records {
		entries = append(entries, bibtexEntry(rec, keys[i]))
	}
	return []byte(strings.Join(entries, "\n"))
}

func bibtexEntry(rec record.Record, key string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", bibtexType(rec.Type), key))

	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", escapeLatex(rec.AuthorString())))
	}
	if rec.Title != "" {
		b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))
	}
	if rec.Venue != "" {
		fieldName := "journal"
		if rec.Type == record.TypeInProceedings {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(rec.Venue)))
	}
	if rec.Volume != "" {
		b.WriteString(fmt.Sprintf("  volume = {%s},\n", rec.Volume))
	}
	if rec.Issue != "" {
		b.WriteString(fmt.Sprintf("  number = {%s},\n", rec.Issue))
	}
	if !rec.Pages.IsZero() {
		b.WriteString(fmt.Sprintf("  pages = {%d--%d},\n", rec.Pages.Start, rec.Pages.End))
	}
	if rec.Year > 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.Year))
	}
	if rec.Publisher != "" {
		b.WriteString(fmt.Sprintf("  publisher = {%s},\n", escapeLatex(rec.Publisher)))
	}
	if rec.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", rec.DOI))
	}
	if rec.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", rec.URL))
	}
	b.WriteString(fmt.Sprintf("  note = {Extraction confidence: %.2f},\n", rec.Confidence))

	b.WriteString("}\n")

	return b.String()
}

// bibtexType maps a citation type to its BibTeX entry type.
func bibtexType(t record.CitationType) string {
	switch t {
	case record.TypeArticle:
		return "article"
	case record.TypeInProceedings:
		return "inproceedings"
	case record.TypeBook:
		return "book"
	case record.TypeTechReport:
		return "techreport"
	case record.TypePhDThesis:
		return "phdthesis"
	}
	return "misc"
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
