package fields

import (
	"regexp"
	"strings"
)

// Name suffixes kept attached to the surname.
var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true,
	"sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

var (
	andSplit   = regexp.MustCompile(`(?i)\s+and\s+|\s*&\s*`)
	etAlSuffix = regexp.MustCompile(`(?i)\bet\.?\s+al\.?\s*$`)
	initialTok = regexp.MustCompile(`^[A-Z]\.?$`)
)

// extractAuthors parses the text that precedes the title into a list of
// "Last, F." names. Collection stops at the first token that marks the
// title boundary: an opening quote or a year.
func extractAuthors(text string) []string {
	text = trimAtBoundary(text)
	text = etAlSuffix.ReplaceAllString(text, "")
	text = strings.Trim(strings.TrimSpace(text), ",;:")
	if text == "" {
		return nil
	}

	var segments []string
	if andSplit.MatchString(text) {
		for _, part := range andSplit.Split(text, -1) {
			segments = append(segments, splitCommaNames(part)...)
		}
	} else {
		segments = splitCommaNames(text)
	}

	var authors []string
	for _, seg := range segments {
		if name := normalizeName(seg); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// trimAtBoundary cuts the author region at the first opening quote or
// 4-digit year, whichever comes first.
func trimAtBoundary(text string) string {
	cut := len(text)
	for _, q := range []string{`"`, "“", "‘"} {
		if i := strings.Index(text, q); i >= 0 && i < cut {
			cut = i
		}
	}
	if loc := yearPattern.FindStringIndex(text); loc != nil && loc[0] < cut {
		cut = loc[0]
	}
	return text[:cut]
}

// splitCommaNames splits a comma-separated run of names, re-joining
// "Last, F." pairs that the comma split tore apart. A part consisting
// only of initials belongs to the surname before it.
func splitCommaNames(text string) []string {
	parts := strings.Split(text, ",")
	var names []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(names) > 0 && allInitials(p) {
			names[len(names)-1] += ", " + p
			continue
		}
		names = append(names, p)
	}
	return names
}

// allInitials reports whether every token is a single-letter initial.
func allInitials(s string) bool {
	toks := strings.Fields(s)
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if !initialTok.MatchString(t) {
			return false
		}
	}
	return true
}

// normalizeName converts one name segment to "Last, F." form.
// Handles "J. Smith", "John Smith", and pass-through "Smith, J.".
// Multi-part surnames and non-Western name orders are out of reach for
// this heuristic and come out surname-last.
func normalizeName(seg string) string {
	seg = cleanField(seg)
	if len(seg) < 2 || !strings.ContainsFunc(seg, isLetter) {
		return ""
	}

	// Already "Last, Initials" form.
	if i := strings.Index(seg, ","); i > 0 {
		last := strings.TrimSpace(seg[:i])
		rest := strings.TrimSpace(seg[i+1:])
		return last + ", " + initialsOf(rest)
	}

	toks := strings.Fields(seg)
	if len(toks) == 1 {
		return toks[0]
	}

	// Keep a trailing suffix with the surname.
	last := toks[len(toks)-1]
	given := toks[:len(toks)-1]
	if nameSuffixes[strings.ToLower(last)] && len(toks) > 2 {
		last = toks[len(toks)-2] + " " + last
		given = toks[:len(toks)-2]
	}

	return last + ", " + initialsOf(strings.Join(given, " "))
}

// initialsOf abbreviates given names to dotted initials: "John A." ->
// "J. A.".
func initialsOf(given string) string {
	var out []string
	for _, t := range strings.Fields(given) {
		r := []rune(t)
		if len(r) == 0 || !isLetter(r[0]) {
			continue
		}
		out = append(out, string(r[0])+".")
	}
	return strings.Join(out, " ")
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}
