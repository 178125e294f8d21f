package record

// Source identifies who supplied a field value.
type Source string

const (
	// SourceNone marks a field that no stage has populated.
	SourceNone Source = ""
	// SourceLocal marks a field parsed from the PDF text itself.
	SourceLocal Source = "local"
	// SourceDOIOrg marks a field supplied by doi.org CSL resolution.
	SourceDOIOrg Source = "doi.org"
	// SourceCrossRef marks a field supplied by CrossRef lookup or search.
	SourceCrossRef Source = "crossref"
)

// External reports whether the source is an enrichment service rather
// than the local parser.
func (s Source) External() bool {
	return s == SourceDOIOrg || s == SourceCrossRef
}

// Field names the record fields that carry provenance. The values match
// the record's JSON field names.
type Field string

const (
	FieldAuthors   Field = "authors"
	FieldTitle     Field = "title"
	FieldYear      Field = "year"
	FieldVenue     Field = "venue"
	FieldVolume    Field = "volume"
	FieldIssue     Field = "issue"
	FieldPages     Field = "pages"
	FieldPublisher Field = "publisher"
	FieldISSN      Field = "issn"
	FieldDOI       Field = "doi"
	FieldURL       Field = "url"
	FieldKeywords  Field = "keywords"
)

// Provenance maps each populated field to the source that last set it.
// Absent keys mean the field was never populated, so the per-field state
// space is exactly {absent, local, external(source)}.
type Provenance map[Field]Source

// Set records src as the supplier of field. A nil map is left untouched;
// callers that want provenance must allocate it first.
func (p Provenance) Set(field Field, src Source) {
	if p == nil {
		return
	}
	p[field] = src
}

// Get returns the source for field, or SourceNone when the field has
// never been populated.
func (p Provenance) Get(field Field) Source {
	if p == nil {
		return SourceNone
	}
	return p[field]
}

// Clone returns an independent copy, so that deduplication and merge can
// never alias provenance across records.
func (p Provenance) Clone() Provenance {
	if p == nil {
		return nil
	}
	out := make(Provenance, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
