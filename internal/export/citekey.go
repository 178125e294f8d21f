package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/refsift/refsift/internal/record"
)

// CiteKey builds a citation key from the first author's surname and the
// year, e.g. "smith2020". Records without authors fall back to
// "unknown" plus the year when known.
func CiteKey(rec record.Record) string {
	surname := sanitizeKeyPart(rec.FirstAuthorSurname())
	if surname == "" {
		surname = "unknown"
	}
	if rec.Year > 0 {
		return fmt.Sprintf("%s%d", surname, rec.Year)
	}
	return surname
}

// AssignKeys returns a citation key per record, resolving collisions by
// appending "-2", "-3" and so on in input order.
func AssignKeys(records []record.Record) []string {
	keys := make([]string, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		base := CiteKey(rec)
		seen[base]++
		if n := seen[base]; n > 1 {
			keys[i] = fmt.Sprintf("%s-%d", base, n)
		} else {
			keys[i] = base
		}
	}
	return keys
}

func sanitizeKeyPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
