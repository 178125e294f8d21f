package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/refsift/refsift/internal/record"
)

var csvHeader = []string{
	"ordinal", "number", "authors", "title", "year", "venue",
	"volume", "issue", "pages", "publisher", "issn",
	"doi", "url", "type", "confidence", "enriched_by",
}

// ToCSV serializes records as CSV with a fixed header row. Authors are
// joined with semicolons inside a single column.
func ToCSV(records []record.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			fmt.Sprintf("%d", rec.Ordinal),
			rec.Number,
			strings.Join(rec.Authors, "; "),
			rec.Title,
			csvYear(rec.Year),
			rec.Venue,
			rec.Volume,
			rec.Issue,
			rec.Pages.String(),
			rec.Publisher,
			rec.ISSN,
			rec.DOI,
			rec.URL,
			string(rec.Type),
			fmt.Sprintf("%.2f", rec.Confidence),
			string(rec.EnrichedBy),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvYear(y int) string {
	if y == 0 {
		return ""
	}
	return fmt.Sprintf("%d", y)
}
