// Package reports renders per-query retrieval reports to JSON and Markdown
// files for offline review.
package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Match is one retrieved document in rank order.
type Match struct {
	Rank int    `json:"rank"`
	Text string `json:"text"`
}

// ConversationReport captures a single retrieval-and-answer round trip.
type ConversationReport struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Query      string    `json:"query"`
	Collection string    `json:"collection_name"`
	K          int       `json:"k"`
	Matches    []Match   `json:"matches"`
	Summary    string    `json:"summary"`
	Answer     string    `json:"answer"`
	Model      string    `json:"model,omitempty"`
	SourcePath string    `json:"path_to_pdf,omitempty"`
	SourcePage int       `json:"number_of_page"`
}

// Writer saves reports under a directory.
type Writer struct {
	dir string
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes the report as <id>.json and <id>.md and returns both paths.
func (w *Writer) Save(r ConversationReport) (jsonPath, mdPath string, err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("reports: create dir: %w", err)
	}

	jsonPath = filepath.Join(w.dir, r.ID+".json")
	mdPath = filepath.Join(w.dir, r.ID+".md")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("reports: marshal: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("reports: write json: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return "", "", fmt.Errorf("reports: write markdown: %w", err)
	}
	return jsonPath, mdPath, nil
}

// RenderMarkdown renders the human-readable form of a report.
func RenderMarkdown(r ConversationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversation Report %s\n", r.ID)
	fmt.Fprintf(&b, "# Pdf %s\n", r.SourcePath)
	fmt.Fprintf(&b, "# Number of page of pdf %d\n", r.SourcePage)
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Collection:** %s\n", r.Collection)
	fmt.Fprintf(&b, "- **Query:** %s\n", r.Query)
	fmt.Fprintf(&b, "- **k:** %d\n", r.K)
	b.WriteString("\n## Answer\n")
	b.WriteString(r.Answer)
	b.WriteString("\n\n## Matches\n")
	for _, m := range r.Matches {
		fmt.Fprintf(&b, "### Match %d\n%s\n\n", m.Rank, m.Text)
	}
	b.WriteString("## Summary\n")
	b.WriteString(r.Summary)
	return b.String()
}
