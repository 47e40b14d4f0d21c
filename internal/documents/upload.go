package documents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotPDF is returned for uploads without a .pdf extension.
var ErrNotPDF = errors.New("documents: only PDF files are supported")

// NewCollectionName returns a fresh per-upload vector collection name.
func NewCollectionName() string {
	return "docs_" + uuid.NewString()
}

// SavePDF writes an uploaded PDF into dir and returns the final path. An
// existing file with the same name is kept; the new upload gets a timestamp
// suffix instead.
func SavePDF(dir, filename string, data []byte) (string, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "", ErrNotPDF
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("documents: create upload dir: %w", err)
	}

	base := filepath.Base(filename)
	path := filepath.Join(dir, base)
	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(base)
		name := strings.TrimSuffix(base, ext)
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, time.Now().Unix(), ext))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("documents: save upload: %w", err)
	}
	return path, nil
}
