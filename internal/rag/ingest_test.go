package rag

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

func TestReadPDFPagesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.pdf")
	writeFixturePDF(t, path,
		"General conditions apply to every contract",
		"Motor third party insurance covers damage to others",
	)

	pages, err := ReadPDFPages(path)
	if err != nil {
		t.Fatalf("ReadPDFPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if !strings.Contains(pages[0], "General conditions") {
		t.Errorf("page 1 = %q", pages[0])
	}
	if !strings.Contains(pages[1], "Motor third party insurance") {
		t.Errorf("page 2 = %q", pages[1])
	}
}

func TestReadPDFPagesMissingFile(t *testing.T) {
	if _, err := ReadPDFPages(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Error("ReadPDFPages() should fail for a missing file")
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("word ", 50)
	pieces := SplitText(strings.TrimSpace(text), 100, 20)

	if len(pieces) < 2 {
		t.Fatalf("got %d pieces, want at least 2", len(pieces))
	}
	for _, p := range pieces {
		if len(p) > 100 {
			t.Errorf("piece of %d runes exceeds the chunk size", len(p))
		}
	}
}
