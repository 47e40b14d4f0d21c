package documents

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "documents.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Insert(ctx, "Insurance.pdf", "/tmp/Insurance.pdf", "docs_a")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if first.ID == 0 {
		t.Error("Insert() should assign an id")
	}
	if _, err := store.Insert(ctx, "Terms.pdf", "/tmp/Terms.pdf", "docs_b"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	records, err := store.List(ctx, false, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
}

func TestListLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"} {
		if _, err := store.Insert(ctx, name, "/tmp/"+name, "docs_x"); err != nil {
			t.Fatalf("Insert(%s) error = %v", name, err)
		}
	}

	records, err := store.List(ctx, false, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("List(limit=3) returned %d records", len(records))
	}
}

func TestSoftDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Insert(ctx, "a.pdf", "/tmp/a.pdf", "docs_x")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.SoftDelete(ctx, rec.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	visible, err := store.List(ctx, false, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("deleted documents should be hidden, got %d", len(visible))
	}

	all, err := store.List(ctx, true, 0)
	if err != nil {
		t.Fatalf("List(includeDeleted) error = %v", err)
	}
	if len(all) != 1 || !all[0].Deleted {
		t.Errorf("List(includeDeleted) = %+v", all)
	}
}

func TestSoftDeleteMissing(t *testing.T) {
	store := newTestStore(t)
	if err := store.SoftDelete(context.Background(), 999); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SoftDelete(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestSavePDF(t *testing.T) {
	dir := t.TempDir()

	path, err := SavePDF(dir, "Insurance.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("SavePDF() error = %v", err)
	}
	if filepath.Base(path) != "Insurance.pdf" {
		t.Errorf("SavePDF() path = %q", path)
	}

	// A second upload with the same name must not clobber the first.
	second, err := SavePDF(dir, "Insurance.pdf", []byte("%PDF-1.4 other"))
	if err != nil {
		t.Fatalf("SavePDF() error = %v", err)
	}
	if second == path {
		t.Error("duplicate names should get a distinct path")
	}
	if !strings.HasSuffix(second, ".pdf") {
		t.Errorf("second path lost its extension: %q", second)
	}
	if data, _ := os.ReadFile(path); string(data) != "%PDF-1.4" {
		t.Error("original upload was overwritten")
	}
}

func TestSavePDFRejectsOtherTypes(t *testing.T) {
	if _, err := SavePDF(t.TempDir(), "notes.txt", []byte("x")); !errors.Is(err, ErrNotPDF) {
		t.Errorf("SavePDF(txt) error = %v, want ErrNotPDF", err)
	}
}

func TestNewCollectionName(t *testing.T) {
	a, b := NewCollectionName(), NewCollectionName()
	if !strings.HasPrefix(a, "docs_") || a == b {
		t.Errorf("NewCollectionName() = %q, %q", a, b)
	}
}
