package pdftext

import "regexp"

var (
	garbledChar  = regexp.MustCompile(`[^\w\s.,;:\-()\[\]{}'"/&]`)
	missingSpace = regexp.MustCompile(`[a-z][A-Z]`)
	yearToken    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	bracketNum   = regexp.MustCompile(`\[\d+\]`)
)

// TextQuality estimates how cleanly a references section survived PDF
// text extraction. Penalties apply for a high ratio of garbled
// characters, for lowercase-uppercase adjacencies (dropped spaces), and
// for very short output; the presence of years together with bracketed
// numbers is rewarded as a sign of intact reference markers.
func TextQuality(text string) float64 {
	if text == "" {
		return 0.0
	}

	score := 1.0
	n := float64(len(text))

	if float64(len(garbledChar.FindAllString(text, -1)))/n > 0.1 {
		score -= 0.3
	}
	if float64(len(missingSpace.FindAllString(text, -1)))/n > 0.05 {
		score -= 0.2
	}
	if yearToken.MatchString(text) && bracketNum.MatchString(text) {
		score += 0.1
	}
	if len(text) < 50 {
		score -= 0.2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
