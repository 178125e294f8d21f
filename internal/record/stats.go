package record

// LowConfidenceThreshold is the score below which a record counts as
// low-confidence in statistics and listings.
const LowConfidenceThreshold = 0.5

// Stats summarizes one document's parsed records.
type Stats struct {
	Total         int                  `json:"total"`
	AvgConfidence float64              `json:"avg_confidence"`
	WithDOI       int                  `json:"with_doi"`
	WithURL       int                  `json:"with_url"`
	ByType        map[CitationType]int `json:"by_type"`
	ByYear        map[int]int          `json:"by_year"`
	LowConfidence int                  `json:"low_confidence"`
}

// Summarize computes aggregate statistics over a record set.
func Summarize(records []Record) Stats {
	stats := Stats{
		ByType: make(map[CitationType]int),
		ByYear: make(map[int]int),
	}
	if len(records) == 0 {
		return stats
	}

	sum := 0.0
	for i := range records {
		r := &records[i]
		stats.Total++
		sum += r.Confidence
		if r.DOI != "" {
			stats.WithDOI++
		}
		if r.URL != "" {
			stats.WithURL++
		}
		if r.Confidence < LowConfidenceThreshold {
			stats.LowConfidence++
		}
		stats.ByType[r.Type]++
		if r.Year != 0 {
			stats.ByYear[r.Year]++
		}
	}
	stats.AvgConfidence = sum / float64(stats.Total)
	return stats
}
