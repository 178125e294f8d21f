// Package dedupe removes near-duplicate references by title similarity.
package dedupe

import (
	"strings"

	"github.com/refsift/refsift/internal/record"
)

// DefaultThreshold is the similarity above which two titles count as
// the same work. Tunable per call; 0.85 tolerates roughly one changed
// word or a handful of character-level OCR slips in a typical title.
const DefaultThreshold = 0.85

// Dedupe returns records with near-duplicates removed. Two records are
// duplicates when they share a DOI, or when their normalized titles
// reach the similarity threshold. The survivor of a pair is the one
// with higher confidence; on a tie the earlier ordinal wins. Output
// order follows input order of the surviving slots, so the pass is
// order-preserving and idempotent.
//
// Comparison is O(n²) over one document's references, which stays
// small (typically under 200 entries).
func Dedupe(records []record.Record, threshold float64) []record.Record {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var kept []record.Record
	for _, cand := range records {
		dupAt := -1
		for i := range kept {
			if isDuplicate(&kept[i], &cand, threshold) {
				dupAt = i
				break
			}
		}
		if dupAt < 0 {
			kept = append(kept, cand)
			continue
		}
		// The candidate always has the larger ordinal, so it only
		// displaces the incumbent on strictly higher confidence.
		if cand.Confidence > kept[dupAt].Confidence {
			// Similarity is not transitive: the new survivor can match
			// kept records the displaced one did not, so collapse again.
			kept[dupAt] = cand
			kept = collapse(kept, threshold)
		}
	}
	return kept
}

// collapse merges duplicate pairs left in kept until none remain. The
// survivor of each pair stays in the earlier slot.
func collapse(kept []record.Record, threshold float64) []record.Record {
	for {
		merged := false
		for i := 0; i < len(kept) && !merged; i++ {
			for j := i + 1; j < len(kept); j++ {
				if !isDuplicate(&kept[i], &kept[j], threshold) {
					continue
				}
				kept[i] = survivor(kept[i], kept[j])
				kept = append(kept[:j], kept[j+1:]...)
				merged = true
				break
			}
		}
		if !merged {
			return kept
		}
	}
}

func survivor(a, b record.Record) record.Record {
	if b.Confidence > a.Confidence {
		return b
	}
	if b.Confidence == a.Confidence && b.Ordinal < a.Ordinal {
		return b
	}
	return a
}

func isDuplicate(a, b *record.Record, threshold float64) bool {
	if a.DOI != "" && b.DOI != "" {
		return strings.EqualFold(a.DOI, b.DOI)
	}
	if a.Title == "" || b.Title == "" {
		return false
	}
	return Similarity(a.Title, b.Title) >= threshold
}

// Similarity scores two titles in [0,1] using the edit-distance ratio
// of their normalized forms: 1 - distance/maxLen. Identical titles
// score 1; unrelated titles score near 0.
func Similarity(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	dist := levenshtein(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(dist)/float64(maxLen)
}

// NormalizeTitle lowercases, strips punctuation, and collapses
// whitespace so that formatting differences never defeat comparison.
func NormalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
