package pdftext

import (
	"errors"
	"regexp"
	"strings"
)

// ErrSectionNotFound indicates that no references heading was located.
// Callers treat it as "zero references for this document", never as a
// batch-fatal condition.
var ErrSectionNotFound = errors.New("references section not found")

// headingPattern matches a references heading on its own line: an
// optional section number, one of the heading keywords, optional colon.
// Mid-sentence occurrences of "references" do not match because the
// pattern is anchored to the whole line.
var headingPattern = regexp.MustCompile(`(?im)^[ \t]*(?:[0-9]+[.)]?|[IVXL]+\.)?[ \t]*(REFERENCES|REFERENCE|BIBLIOGRAPHY|WORKS CITED)[ \t]*:?[ \t]*$`)

// terminatorPattern matches the heading of the first non-reference
// section after the references: appendix or acknowledgments (both
// spellings).
var terminatorPattern = regexp.MustCompile(`(?im)^[ \t]*(?:[0-9]+[.)]?|[IVXL]+\.)?[ \t]*(APPENDIX(?:[ \t]+[A-Z0-9]+)?|ACKNOWLEDGMENTS?|ACKNOWLEDGEMENTS?)[ \t]*:?[ \t]*$`)

// controlChars strips control characters and soft hyphens that PDF text
// extraction leaves behind.
var controlChars = regexp.MustCompile("[\x00-\x08\x0B-\x1F\x7F­]")

// Section is the extracted references section of one document.
type Section struct {
	// Text is the body between the heading line and the terminator line,
	// excluding both markers.
	Text string
	// Quality is a [0,1] estimate of how clean the extracted text is.
	Quality float64
}

// ExtractSection reads the PDF at path and returns its references
// section. The first heading match wins when a document contains more
// than one heading keyword. Returns ErrSectionNotFound when no heading
// matches; any other error is a document-level failure.
func ExtractSection(path string) (*Section, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}

	text, err := DocumentText(path)
	if err != nil {
		return nil, err
	}

	body, ok := locateSection(text)
	if !ok {
		return nil, ErrSectionNotFound
	}

	body = controlChars.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrSectionNotFound
	}

	return &Section{
		Text:    body,
		Quality: TextQuality(body),
	}, nil
}

// locateSection finds the substring between the first references heading
// and the first terminator heading after it (or end of text).
func locateSection(text string) (string, bool) {
	loc := headingPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]

	if end := terminatorPattern.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return rest, true
}
