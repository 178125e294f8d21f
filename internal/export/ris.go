package export

import (
	"fmt"
	"strings"

	"github.com/refsift/refsift/internal/record"
)

// ToRIS converts records to RIS format, one tagged entry per record
// terminated by an ER line.
func ToRIS(records []record.Record) []byte {
	var entries []string
	for _, rec := range records {
		entries = append(entries, risEntry(rec))
	}
	return []byte(strings.Join(entries, "\n"))
}

func risEntry(rec record.Record) string {
	var b strings.Builder

	writeTag := func(tag, value string) {
		if value != "" {
			b.WriteString(fmt.Sprintf("%s  - %s\n", tag, value))
		}
	}

	writeTag("TY", risType(rec.Type))
	for _, a := range rec.Authors {
		writeTag("AU", a)
	}
	writeTag("TI", rec.Title)
	writeTag("JO", rec.Venue)
	writeTag("VL", rec.Volume)
	writeTag("IS", rec.Issue)
	if !rec.Pages.IsZero() {
		writeTag("SP", fmt.Sprintf("%d", rec.Pages.Start))
		writeTag("EP", fmt.Sprintf("%d", rec.Pages.End))
	}
	if rec.Year > 0 {
		writeTag("PY", fmt.Sprintf("%d", rec.Year))
	}
	writeTag("PB", rec.Publisher)
	writeTag("SN", rec.ISSN)
	for _, kw := range rec.Keywords {
		writeTag("KW", kw)
	}
	writeTag("DO", rec.DOI)
	writeTag("UR", rec.URL)
	b.WriteString("ER  - \n")

	return b.String()
}

// risType maps a citation type to its RIS reference type tag.
func risType(t record.CitationType) string {
	switch t {
	case record.TypeArticle:
		return "JOUR"
	case record.TypeInProceedings:
		return "CONF"
	case record.TypeBook:
		return "BOOK"
	case record.TypeTechReport:
		return "RPRT"
	case record.TypePhDThesis:
		return "THES"
	}
	return "GEN"
}
