package fields

import "github.com/refsift/refsift/internal/record"

// Confidence weighting. The weights are part of the package contract:
// tests assert exact scores, and downstream thresholds (dedup
// tie-breaks, low-confidence flagging) depend on them staying put.
// They sum to 1.0, so a record with a title, a year, at least one
// author, and a DOI or venue scores exactly 1.0.
const (
	WeightTitle      = 0.35
	WeightYear       = 0.25
	WeightAuthors    = 0.25
	WeightDOIOrVenue = 0.15
)

// Score computes the completeness confidence for a record. It is
// monotonic in field completeness: populating any scored field never
// lowers the result.
func Score(rec *record.Record) float64 {
	score := 0.0
	if rec.Title != "" {
		score += WeightTitle
	}
	if rec.Year != 0 {
		score += WeightYear
	}
	if len(rec.Authors) > 0 {
		score += WeightAuthors
	}
	if rec.DOI != "" || rec.Venue != "" {
		score += WeightDOIOrVenue
	}
	return score
}
