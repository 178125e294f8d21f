package export

import (
	"encoding/json"
	"time"

	"github.com/refsift/refsift/internal/record"
)

// FormatVersion identifies the JSON export envelope layout.
const FormatVersion = "1.0"

// Envelope wraps a record set with export metadata.
type Envelope struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	FormatVersion string          `json:"format_version"`
	RecordCount   int             `json:"record_count"`
	Records       []record.Record `json:"records"`
}

// ToJSON serializes records inside a metadata envelope.
func ToJSON(records []record.Record) ([]byte, error) {
	env := Envelope{
		GeneratedAt:   time.Now().UTC(),
		FormatVersion: FormatVersion,
		RecordCount:   len(records),
		Records:       records,
	}
	if env.Records == nil {
		env.Records = []record.Record{}
	}
	return json.MarshalIndent(env, "", "  ")
}
