// Package pdftext extracts reading-ordered text from academic PDFs and
// locates the references section within it.
package pdftext

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Layout tolerances, in PDF points.
const (
	// lineTolerance groups text fragments whose baselines differ by less
	// than this into one line.
	lineTolerance = 2.0

	// fragmentGap is the horizontal distance between fragments that
	// implies a missing space.
	fragmentGap = 1.0

	// minColumnLines is the smallest right-hand group treated as a real
	// column. Below this the page is read as single-column.
	minColumnLines = 2
)

// line is one reconstructed text line with its position on the page.
type line struct {
	x    float64 // leftmost fragment start
	y    float64 // baseline (PDF coordinates, origin bottom-left)
	text string
}

// Validate checks that path points to a readable, non-empty PDF with at
// least one page. It is the per-document fatal gate: a batch driver
// reports the error for this document and moves on.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", path)
		}
		return fmt.Errorf("checking file: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return fmt.Errorf("not a PDF file: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("corrupted PDF: %w", err)
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return fmt.Errorf("PDF has no pages: %s", path)
	}
	return nil
}

// DocumentText returns the full text of the PDF in reading order.
// Multi-column pages are linearized left column first, each column
// top-to-bottom, so that a references section flowing across columns
// comes out contiguous.
func DocumentText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text := pageText(page)
		if text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}

// pageText linearizes one page. Fragments are grouped into lines by
// baseline, lines are split into left/right groups on the midpoint of
// the page's text extent, and the groups are emitted column-major.
func pageText(page pdf.Page) string {
	frags := page.Content().Text
	if len(frags) == 0 {
		return ""
	}

	lines := buildLines(frags)
	if len(lines) == 0 {
		return ""
	}

	minX, maxX := lines[0].x, lines[0].x
	for _, ln := range lines {
		if ln.x < minX {
			minX = ln.x
		}
		if ln.x > maxX {
			maxX = ln.x
		}
	}
	mid := (minX + maxX) / 2

	var left, right []line
	for _, ln := range lines {
		if ln.x >= mid {
			right = append(right, ln)
		} else {
			left = append(left, ln)
		}
	}

	// Pages without a credible right column read top-to-bottom as-is.
	if len(right) < minColumnLines {
		return joinLines(lines)
	}
	return joinLines(left) + "\n" + joinLines(right)
}

// buildLines groups positioned fragments into lines and orders them
// top-to-bottom. PDF Y grows upward, so descending Y is reading order.
func buildLines(frags []pdf.Text) []line {
	sorted := make([]pdf.Text, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []line
	var cur *line
	var prevEnd float64

	for _, f := range sorted {
		if f.S == "" {
			continue
		}
		if cur == nil || cur.y-f.Y > lineTolerance {
			if cur != nil {
				lines = append(lines, *cur)
			}
			cur = &line{x: f.X, y: f.Y, text: f.S}
			prevEnd = f.X + f.W
			continue
		}
		if f.X-prevEnd > fragmentGap && !strings.HasSuffix(cur.text, " ") {
			cur.text += " "
		}
		cur.text += f.S
		if f.X < cur.x {
			cur.x = f.X
		}
		prevEnd = f.X + f.W
	}
	if cur != nil {
		lines = append(lines, *cur)
	}

	return lines
}

func joinLines(lines []line) string {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		t := strings.TrimSpace(ln.text)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
