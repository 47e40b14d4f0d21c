// Package provenance locates the source page of an answer inside the locally
// stored PDF corpus. It is a linear scan with no index, which is acceptable
// only because the corpus is small and the path is not latency-critical.
package provenance

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/rag"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

const anchorWords = 8

// PageNotFound is the page value returned when a snippet matches no PDF.
const PageNotFound = -1

// Locator scans a directory of PDFs for the page containing a text snippet.
type Locator struct {
	logger *logging.Logger
}

// NewLocator creates a locator.
func NewLocator(logger *logging.Logger) *Locator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Locator{logger: logger}
}

// Locate returns the first (path, 1-based page) whose text contains the
// snippet, checked by normalized substring or a whitespace-flexible pattern
// over the snippet's anchor. Returns ("", -1) when nothing matches.
func (l *Locator) Locate(dir, snippet string) (string, int) {
	anchor := Anchor(snippet, anchorWords)
	if anchor == "" {
		return "", PageNotFound
	}
	pattern := flexiblePattern(anchor)
	needle := normalize(anchor)

	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		l.logger.Warn("pdf scan failed", "dir", dir, "error", err)
		return "", PageNotFound
	}
	sort.Strings(paths)

	for _, path := range paths {
		pages, err := rag.ReadPDFPages(path)
		if err != nil {
			// A single unreadable file should not end the scan.
			l.logger.Warn("skipping unreadable pdf", "path", path, "error", err)
			continue
		}
		for i, pageText := range pages {
			if pageText == "" {
				continue
			}
			if strings.Contains(normalize(pageText), needle) || pattern.MatchString(pageText) {
				return path, i + 1
			}
		}
	}
	return "", PageNotFound
}

// Anchor returns the first n words of the snippet.
func Anchor(snippet string, n int) string {
	words := strings.Fields(snippet)
	if len(words) == 0 {
		return ""
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// flexiblePattern builds a case-insensitive pattern that tolerates arbitrary
// whitespace (including line breaks) between the anchor's words.
func flexiblePattern(anchor string) *regexp.Regexp {
	words := strings.Fields(anchor)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?is)` + strings.Join(quoted, `\s+`))
}

// normalize lower-cases and collapses all whitespace to single spaces.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
