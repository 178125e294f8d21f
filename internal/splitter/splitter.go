// Package splitter turns raw references-section text into individual
// candidate reference strings.
package splitter

import (
	"regexp"
	"strconv"
	"strings"
)

// minEntryLen drops fragments too short to be a reference, such as
// stray column headers that survive extraction.
const minEntryLen = 10

// Entry is one un-parsed candidate reference.
type Entry struct {
	// Ordinal is the 1-based position within the section, stable across
	// later stages so output order matches document order.
	Ordinal int
	Text    string
}

// Strategy is a named splitting heuristic. Split returns the candidate
// strings and whether the strategy considers itself applicable.
// Strategies are tried in registry order and the first applicable one
// wins; they must not fall through to one another internally.
type Strategy struct {
	Name  string
	Split func(text string) ([]string, bool)
}

// Strategies is the ordered registry. Earlier entries are higher
// precedence: explicit numbering beats author-year, which beats the
// line-per-entry fallback. The fallback always applies.
var Strategies = []Strategy{
	{Name: "numbered-bracket", Split: splitNumberedBracket},
	{Name: "numbered-dot", Split: splitNumberedDot},
	{Name: "author-year", Split: splitAuthorYear},
	{Name: "lines", Split: splitLines},
}

// Split normalizes the section text and splits it into ordered
// candidate entries.
func Split(sectionText string) []Entry {
	text := Normalize(sectionText)
	if text == "" {
		return nil
	}

	var parts []string
	for _, s := range Strategies {
		got, ok := s.Split(text)
		if ok && len(got) >= 2 {
			parts = got
			break
		}
	}
	if parts == nil {
		// Single-entry sections land here: the fallback applied but
		// produced fewer than two entries.
		parts, _ = splitLines(text)
	}

	entries := make([]Entry, 0, len(parts))
	ordinal := 0
	for _, p := range parts {
		p = collapseSpace(p)
		if len(p) < minEntryLen {
			continue
		}
		ordinal++
		entries = append(entries, Entry{Ordinal: ordinal, Text: p})
	}
	return entries
}

var (
	hyphenWrap   = regexp.MustCompile(`([A-Za-z])-\n([a-z])`)
	footerLine   = regexp.MustCompile(`(?m)^[ \t]*\d{1,4}[ \t]*$`)
	spaceRun     = regexp.MustCompile(`[ \t]+`)
	blankLines   = regexp.MustCompile(`\n{2,}`)
	unicodeDash  = strings.NewReplacer("–", "-", "—", "-")
	bracketStart = regexp.MustCompile(`(?m)^[ \t]*\[\d+\]`)
	dotStart     = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.[ \t]+`)
	authorStart  = regexp.MustCompile(`(?m)^[A-Z][A-Za-z'-]+,?[^\n]*?\((19|20)\d{2}[a-z]?\)`)
)

// Normalize removes PDF line-wrap artifacts: hyphenation at line ends,
// page-number footer lines, runs of horizontal whitespace, and unicode
// dashes. Newlines survive because the splitting heuristics are
// anchored to line starts.
func Normalize(text string) string {
	text = unicodeDash.Replace(text)
	text = hyphenWrap.ReplaceAllString(text, "$1$2")
	text = footerLine.ReplaceAllString(text, "")
	text = spaceRun.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// splitNumberedBracket splits at line starts of the form "[N]".
func splitNumberedBracket(text string) ([]string, bool) {
	locs := bracketStart.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil, false
	}
	return splitAt(text, locs), true
}

// splitNumberedDot splits at line starts of the form "N. " where the
// numbers increase monotonically across splits. The monotonicity guard
// rejects false positives like dates or page numbers at line starts.
func splitNumberedDot(text string) ([]string, bool) {
	matches := dotStart.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return nil, false
	}

	var locs [][]int
	prev := 0
	for _, m := range matches {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || n <= prev {
			continue
		}
		prev = n
		locs = append(locs, []int{m[0], m[1]})
	}
	if len(locs) < 2 {
		return nil, false
	}
	return splitAt(text, locs), true
}

// splitAuthorYear splits at lines beginning with a capitalized surname
// whose first line carries a parenthesized 4-digit year.
func splitAuthorYear(text string) ([]string, bool) {
	locs := authorStart.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil, false
	}
	return splitAt(text, locs), true
}

// splitLines treats every non-empty line as one entry. Lowest-confidence
// path, used only when everything above failed.
func splitLines(text string) ([]string, bool) {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out, true
}

// splitAt cuts text at the start offsets of the given match locations.
// Text before the first marker is discarded; it belongs to no entry.
func splitAt(text string, locs [][]int) []string {
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, strings.TrimSpace(text[loc[0]:end]))
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
