package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/refsift/refsift/internal/record"
)

var (
	volPattern    = regexp.MustCompile(`(?i)\b(?:vol\.|volume|v\.)\s*(\d+)`)
	bareVolume    = regexp.MustCompile(`\b(\d+)\(\d+\)`)
	issuePattern  = regexp.MustCompile(`(?i)\b(?:no\.|number|issue|n\.)\s*(\d+)`)
	bareIssue     = regexp.MustCompile(`\d\((\d+)\)`)
	pagesPattern  = regexp.MustCompile(`(?i)\b(?:pp\.|pages?|p\.)\s*(\d+)\s*-+\s*(\d+)`)
	singlePage    = regexp.MustCompile(`(?i)\bpp?\.\s*(\d+)\b`)
	barePageRange = regexp.MustCompile(`\b(\d{1,5})\s*-+\s*(\d{1,5})\b`)

	venueNoise = regexp.MustCompile(`(?i)\b(19|20)\d{2}\b|\b(?:vol\.|volume|v\.)\s*\d+|\b(?:no\.|number|issue)\s*\d+|\b(?:pp\.|pages?)\s*[\d-]+|\d+\(\d+\)|\b\d{1,5}\s*-+\s*\d{1,5}\b`)

	procPrefix = regexp.MustCompile(`(?i)^(?:proc\.|proceedings)\s*(?:of\s+)?(?:the\s+)?`)
	ordinalTh  = regexp.MustCompile(`(?i)^\d+(?:st|nd|rd|th)\s+`)

	confKeywords = []string{"proc.", "proceedings", "conference", "symposium", "workshop", "congress"}
	bookKeywords = []string{"isbn", "edition", "ed.", "press", "publisher", "publishing"}
)

// venueInfo is the intermediate venue analysis used by classification.
type venueInfo struct {
	venue      string
	conference bool
	journal    bool
}

// extractVenue isolates the venue name from the text that follows the
// title. Year, volume, issue, and page markers are cut away; what
// remains is the venue. A leading "In" or "Proc. of the" wrapper marks
// a conference venue and is stripped from the name.
func extractVenue(text string) venueInfo {
	var info venueInfo

	text = venueNoise.ReplaceAllString(text, "")
	text = cleanField(strings.Trim(strings.TrimSpace(text), ".,;: "))
	if text == "" {
		return info
	}

	lower := strings.ToLower(text)
	for _, kw := range confKeywords {
		if strings.Contains(lower, kw) {
			info.conference = true
			break
		}
	}
	if strings.HasPrefix(lower, "in ") {
		info.conference = true
		text = strings.TrimSpace(text[3:])
	}
	if strings.Contains(lower, "journal") {
		info.journal = true
	}

	text = procPrefix.ReplaceAllString(text, "")
	text = ordinalTh.ReplaceAllString(text, "")
	text = cleanField(text)

	// Whatever trailing punctuation the marker removal left behind.
	text = strings.Trim(text, ".,;: ")
	info.venue = collapsePunct(text)
	return info
}

// collapsePunct squeezes the ", ," runs left behind when markers are
// removed from the middle of the venue string.
func collapsePunct(s string) string {
	var b strings.Builder
	prevSep := false
	for _, r := range s {
		sep := r == ',' || r == ';'
		if sep && prevSep {
			continue
		}
		prevSep = sep
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	return strings.Trim(out, ".,;: ")
}

func extractVolume(text string) string {
	if m := volPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareVolume.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractIssue(text string) string {
	if m := issuePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareIssue.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// extractPages finds a page range: an explicit "pp. N-M" anywhere, or a
// bare "N-M" only in the trailing third of the entry where page ranges
// conventionally sit. The publication year never counts as a page.
func extractPages(text string, year int) record.Pages {
	if m := pagesPattern.FindStringSubmatch(text); m != nil {
		return pagesFrom(m[1], m[2])
	}

	tail := text[len(text)*2/3:]
	for _, m := range barePageRange.FindAllStringSubmatch(tail, -1) {
		p := pagesFrom(m[1], m[2])
		if p.Start == year || p.End == year {
			continue
		}
		if !p.IsZero() {
			return p
		}
	}

	if m := singlePage.FindStringSubmatch(text); m != nil {
		return pagesFrom(m[1], m[1])
	}
	return record.Pages{}
}

func pagesFrom(start, end string) record.Pages {
	s, err := strconv.Atoi(start)
	if err != nil {
		return record.Pages{}
	}
	e, err := strconv.Atoi(end)
	if err != nil || e < s {
		return record.Pages{Start: s, End: s}
	}
	return record.Pages{Start: s, End: e}
}

// classify applies the rule-based citation typing. Rules are ordered;
// the first one that fires wins.
func classify(text string, v venueInfo, volume, issue string) record.CitationType {
	lower := strings.ToLower(text)

	if v.conference {
		return record.TypeInProceedings
	}
	if v.journal || (volume != "" && issue != "") {
		return record.TypeArticle
	}
	if strings.Contains(lower, "thesis") || strings.Contains(lower, "dissertation") {
		return record.TypePhDThesis
	}
	if strings.Contains(lower, "technical report") || strings.Contains(lower, "tech. rep") {
		return record.TypeTechReport
	}
	if v.venue == "" {
		for _, kw := range bookKeywords {
			if strings.Contains(lower, kw) {
				return record.TypeBook
			}
		}
	}
	return record.TypeMisc
}
