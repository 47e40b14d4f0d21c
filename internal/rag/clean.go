package rag

import (
	"regexp"
	"strings"
)

// Running headers and page numbers left behind by PDF extraction.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*PHOTO\s*$`),
	regexp.MustCompile(`(?i)^\s*UNDERSTANDING INSURANCE\s*$`),
	regexp.MustCompile(`^\s*\d+\s*$`),
}

var (
	hyphenWrapRe = regexp.MustCompile(`(\w+)-\s*\n\s*(\w+)`)
	privateUseRe = regexp.MustCompile(`[\x{E000}-\x{F8FF}]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanPDFText normalizes text extracted from insurance PDFs: soft hyphens,
// private-use glyphs, running headers, page numbers and hyphenated line wraps
// are removed and whitespace is collapsed. The function is idempotent.
func CleanPDFText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\u00ad", "")
	s = strings.ReplaceAll(s, "\uf0fc", "\u2022 ")
	s = privateUseRe.ReplaceAllString(s, "")

	// Re-join words broken across a line wrap ("pol-\nicy" -> "policy").
	s = hyphenWrapRe.ReplaceAllString(s, "$1$2")

	var keep []string
	for _, line := range strings.Split(s, "\n") {
		if isHeaderLine(line) {
			continue
		}
		keep = append(keep, line)
	}

	s = strings.Join(keep, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func isHeaderLine(line string) bool {
	for _, p := range headerPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
