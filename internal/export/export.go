// Package export renders record sets into bibliography file formats.
// All exporters are pure functions of the record sequence; writing the
// payload anywhere is the caller's concern.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/refsift/refsift/internal/record"
)

// Format is a supported serialization format.
type Format string

const (
	FormatBibTeX Format = "bibtex"
	FormatRIS    Format = "ris"
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
)

// Formats lists the supported formats in canonical order.
var Formats = []Format{FormatBibTeX, FormatRIS, FormatJSON, FormatCSV}

// ErrUnsupportedFormat is returned for formats outside the supported
// set. Fatal for the export call, never for the pipeline.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Extension returns the conventional file extension, without dot.
func (f Format) Extension() string {
	switch f {
	case FormatBibTeX:
		return "bib"
	case FormatRIS:
		return "ris"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	}
	return string(f)
}

// ParseFormat normalizes a user-supplied format name. Both the
// canonical names and the file extensions are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bibtex", "bib":
		return FormatBibTeX, nil
	case "ris":
		return FormatRIS, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Export serializes records in the given format.
func Export(records []record.Record, format Format) ([]byte, error) {
	switch format {
	case FormatBibTeX:
		return ToBibTeX(records), nil
	case FormatRIS:
		return ToRIS(records), nil
	case FormatJSON:
		return ToJSON(records)
	case FormatCSV:
		return ToCSV(records)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ExportMultiple serializes the same record set once per requested
// format. An unsupported format fails the whole call before any output
// is produced.
func ExportMultiple(records []record.Record, formats []Format) (map[Format][]byte, error) {
	out := make(map[Format][]byte, len(formats))
	for _, f := range formats {
		payload, err := Export(records, f)
		if err != nil {
			return nil, err
		}
		out[f] = payload
	}
	return out, nil
}
