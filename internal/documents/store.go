// Package documents tracks uploaded PDF metadata in SQLite and drives their
// indexing into per-upload vector collections.
package documents

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one uploaded document.
type Record struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Collection string    `json:"collection"`
	UploadedAt time.Time `json:"uploaded_at"`
	Deleted    bool      `json:"deleted"`
}

// Store persists document metadata.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the metadata database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("documents: open db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			collection TEXT NOT NULL,
			uploaded_at TEXT NOT NULL,
			deleted INTEGER DEFAULT 0
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("documents: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Insert records an uploaded document and returns its id.
func (s *Store) Insert(ctx context.Context, name, path, collection string) (Record, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (name, path, collection, uploaded_at, deleted) VALUES (?, ?, ?, ?, 0)`,
		name, path, collection, now.Format(time.RFC3339),
	)
	if err != nil {
		return Record{}, fmt.Errorf("documents: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("documents: last insert id: %w", err)
	}
	return Record{ID: id, Name: name, Path: path, Collection: collection, UploadedAt: now}, nil
}

// List returns documents newest first, skipping soft-deleted ones unless
// includeDeleted is set. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, includeDeleted bool, limit int) ([]Record, error) {
	q := `SELECT id, name, path, collection, uploaded_at, deleted FROM documents`
	args := []any{}
	if !includeDeleted {
		q += ` WHERE deleted = 0`
	}
	q += ` ORDER BY datetime(uploaded_at) DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec        Record
			uploadedAt string
			deleted    int
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Path, &rec.Collection, &uploadedAt, &deleted); err != nil {
			return nil, fmt.Errorf("documents: scan: %w", err)
		}
		rec.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
		rec.Deleted = deleted != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SoftDelete marks a document deleted without removing the row or the file.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("documents: soft delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
