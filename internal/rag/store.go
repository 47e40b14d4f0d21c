package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Chunk is a piece of document text to be stored alongside its embedding.
type Chunk struct {
	ID        string
	Content   string
	Source    string
	Page      int
	Embedding []float32
}

// Document is a retrieval result: text plus provenance metadata and the
// embedding distance to the query (smaller is closer).
type Document struct {
	Content  string  `json:"content"`
	Source   string  `json:"source,omitempty"`
	Page     int     `json:"page,omitempty"`
	Distance float64 `json:"distance"`
}

// Store persists embedded chunks in SQLite, partitioned by collection name.
// Retrieval is a brute-force cosine scan, which is fine at this corpus size.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewStore opens (or creates) the vector database under dataPath.
func NewStore(dataPath string) (*Store, error) {
	if dataPath == "" {
		dataPath = "./db"
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("rag: creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("rag: opening vector database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("rag: initializing schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		content TEXT NOT NULL,
		source TEXT,
		page INTEGER,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add stores chunks under the named collection.
func (s *Store) Add(ctx context.Context, collection string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rag: starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, collection, content, source, page, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("rag: preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("rag: encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, collection, chunk.Content, chunk.Source, chunk.Page, embeddingJSON,
		); err != nil {
			return fmt.Errorf("rag: inserting chunk: %w", err)
		}
	}

	return tx.Commit()
}

// HasCollection reports whether any chunks exist under the named collection.
func (s *Store) HasCollection(ctx context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM chunks WHERE collection = ? LIMIT 1`, collection,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("rag: checking collection: %w", err)
	}
	return true, nil
}

// Count returns the number of chunks stored in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = ?`, collection,
	).Scan(&n)
	return n, err
}

// Query returns the k nearest chunks in the collection, ordered by
// non-decreasing embedding distance.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, k int) ([]Document, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	exists, err := s.HasCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, COALESCE(source, ''), COALESCE(page, 0), embedding
		FROM chunks
		WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("rag: querying chunks: %w", err)
	}
	defer rows.Close()

	var results []Document
	for rows.Next() {
		var doc Document
		var embeddingJSON []byte
		if err := rows.Scan(&doc.Content, &doc.Source, &doc.Page, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("rag: scanning row: %w", err)
		}
		var embedding []float32
		if err := json.Unmarshal(embeddingJSON, &embedding); err != nil {
			continue // skip corrupted embeddings
		}
		doc.Distance = 1 - cosineSimilarity(vector, embedding)
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rag: reading rows: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
