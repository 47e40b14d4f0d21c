package provenance

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFixturePDF writes a minimal uncompressed PDF with one line of ASCII
// text per page, computing the xref offsets by hand.
func writeFixturePDF(t *testing.T, path string, pageTexts ...string) {
	t.Helper()

	n := len(pageTexts)
	fontNum := 3 + 2*n
	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	}
	for i, text := range pageTexts {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontNum, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefPos)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "caps at eight words",
			in:   "one two three four five six seven eight nine ten",
			want: "one two three four five six seven eight",
		},
		{
			name: "shorter snippets pass through",
			in:   "short snippet",
			want: "short snippet",
		},
		{
			name: "collapses internal whitespace",
			in:   "spaced   out\n words",
			want: "spaced out words",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Anchor(tt.in, 8); got != tt.want {
				t.Errorf("Anchor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFlexiblePattern(t *testing.T) {
	pattern := flexiblePattern("Motor Third Party insurance")

	matches := []string{
		"motor third party insurance covers others",
		"MOTOR\nTHIRD   PARTY\tINSURANCE",
		"prefix text Motor Third\nParty Insurance suffix",
	}
	for _, s := range matches {
		if !pattern.MatchString(s) {
			t.Errorf("pattern should match %q", s)
		}
	}

	if pattern.MatchString("motor comprehensive insurance") {
		t.Error("pattern should not match unrelated text")
	}
}

func TestFlexiblePatternQuotesMetaChars(t *testing.T) {
	pattern := flexiblePattern("cost is $100 (approx.)")
	if !pattern.MatchString("the cost is $100 (approx.) per year") {
		t.Error("regex metacharacters in the anchor must be treated literally")
	}
}

func TestLocateFindsSnippetPage(t *testing.T) {
	dir := t.TempDir()
	writeFixturePDF(t, filepath.Join(dir, "terms.pdf"),
		"General conditions apply to every contract",
		"Motor third party insurance covers damage to others",
	)

	locator := NewLocator(nil)
	path, page := locator.Locate(dir, "Motor third party insurance covers damage")
	if filepath.Base(path) != "terms.pdf" {
		t.Errorf("path = %q, want terms.pdf", path)
	}
	if page != 2 {
		t.Errorf("page = %d, want 2", page)
	}
}

func TestLocateMissAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFixturePDF(t, filepath.Join(dir, "terms.pdf"),
		"General conditions apply to every contract",
	)

	locator := NewLocator(nil)
	path, page := locator.Locate(dir, "quantum blockchain synergies")
	if path != "" || page != PageNotFound {
		t.Errorf("Locate(miss) = (%q, %d), want (\"\", -1)", path, page)
	}
}

func TestLocateSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeFixturePDF(t, filepath.Join(dir, "terms.pdf"),
		"Motor third party insurance covers damage to others",
	)

	locator := NewLocator(nil)
	path, page := locator.Locate(dir, "Motor third party insurance")
	if filepath.Base(path) != "terms.pdf" || page != 1 {
		t.Errorf("Locate() = (%q, %d), want terms.pdf page 1", path, page)
	}
}

func TestLocateEmptyDirectory(t *testing.T) {
	locator := NewLocator(nil)

	path, page := locator.Locate(t.TempDir(), "any snippet at all")
	if path != "" || page != PageNotFound {
		t.Errorf("Locate(empty dir) = (%q, %d), want (\"\", -1)", path, page)
	}
}

func TestLocateBlankSnippet(t *testing.T) {
	locator := NewLocator(nil)

	path, page := locator.Locate(t.TempDir(), "   ")
	if path != "" || page != PageNotFound {
		t.Errorf("Locate(blank) = (%q, %d), want (\"\", -1)", path, page)
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize("  Mixed\tCASE \n text "); got != "mixed case text" {
		t.Errorf("normalize() = %q", got)
	}
}
