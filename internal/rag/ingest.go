package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

const (
	chunkSize    = 1000
	chunkOverlap = 100
)

// Ingestor extracts, cleans, chunks and embeds PDF pages into a collection.
type Ingestor struct {
	embedder *Embedder
	store    *Store
	logger   *logging.Logger
}

// NewIngestor creates a PDF ingestor.
func NewIngestor(embedder *Embedder, store *Store, logger *logging.Logger) *Ingestor {
	if embedder == nil || store == nil {
		panic("rag: ingestor requires an embedder and a store")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ingestor{embedder: embedder, store: store, logger: logger}
}

// IngestPDF indexes one PDF file into the named collection and returns the
// number of chunks stored.
func (in *Ingestor) IngestPDF(ctx context.Context, path, collection string) (int, error) {
	pages, err := ReadPDFPages(path)
	if err != nil {
		return 0, fmt.Errorf("rag: reading %s: %w", path, err)
	}

	var chunks []Chunk
	var texts []string
	for pageNum, pageText := range pages {
		cleaned := CleanPDFText(pageText)
		if cleaned == "" {
			continue
		}
		for _, piece := range SplitText(cleaned, chunkSize, chunkOverlap) {
			chunks = append(chunks, Chunk{
				ID:     uuid.NewString(),
				Source: path,
				Page:   pageNum + 1,
			})
			texts = append(texts, piece)
		}
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := in.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	for i := range chunks {
		chunks[i].Content = texts[i]
		chunks[i].Embedding = vectors[i]
	}

	if err := in.store.Add(ctx, collection, chunks); err != nil {
		return 0, err
	}

	in.logger.Debug("indexed pdf",
		"path", path,
		"collection", collection,
		"chunks", len(chunks),
	)
	return len(chunks), nil
}

// IngestPDFs indexes several PDFs into the same collection.
func (in *Ingestor) IngestPDFs(ctx context.Context, paths []string, collection string) (int, error) {
	total := 0
	for _, path := range paths {
		n, err := in.IngestPDF(ctx, path, collection)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// IngestQA stores plain question/answer pairs (the seed corpus) under the
// named collection, embedding the questions.
func (in *Ingestor) IngestQA(ctx context.Context, collection string, questions, answers []string) error {
	if len(questions) == 0 {
		return nil
	}
	if len(questions) != len(answers) {
		return fmt.Errorf("rag: %d questions but %d answers", len(questions), len(answers))
	}

	vectors, err := in.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return err
	}

	chunks := make([]Chunk, len(questions))
	for i := range questions {
		chunks[i] = Chunk{
			ID:        uuid.NewString(),
			Content:   answers[i],
			Embedding: vectors[i],
		}
	}
	return in.store.Add(ctx, collection, chunks)
}

// ReadPDFPages extracts plain text per page, in page order.
func ReadPDFPages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A bad page should not sink the whole document.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// SplitText cuts text into chunks of at most size runes with the given
// overlap, preferring to break on whitespace.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = chunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= size {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		cut := end
		// Back off to the last space so words stay intact.
		if end < len(runes) {
			for cut > start+step && runes[cut-1] != ' ' {
				cut--
			}
			if cut == start+step {
				cut = end
			}
		}
		piece := strings.TrimSpace(string(runes[start:cut]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if cut >= len(runes) {
			break
		}
	}
	return chunks
}
