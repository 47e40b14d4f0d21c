package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// EmbeddingClient is the slice of the OpenAI client the embedder needs.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

const embedRetryDelay = 500 * time.Millisecond

// Embedder turns text into fixed-length vectors via the OpenAI embeddings API.
// Transient failures are retried a bounded number of times.
type Embedder struct {
	client   EmbeddingClient
	model    string
	attempts int
	logger   *logging.Logger
}

// NewEmbedder creates an embedder with bounded retry.
func NewEmbedder(client EmbeddingClient, model string, attempts int, logger *logging.Logger) *Embedder {
	if client == nil {
		panic("rag: embedding client cannot be nil")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if attempts <= 0 {
		attempts = 3
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Embedder{client: client, model: model, attempts: attempts, logger: logger}
}

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds several texts in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyQuery
	}

	req := &openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	}

	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		resp, err := e.client.CreateEmbeddings(ctx, req)
		if err == nil {
			if len(resp.Data) != len(texts) {
				return nil, fmt.Errorf("rag: embedding response size mismatch: got %d, want %d", len(resp.Data), len(texts))
			}
			out := make([][]float32, len(resp.Data))
			for i, item := range resp.Data {
				out[i] = item.Embedding
			}
			return out, nil
		}

		lastErr = err
		e.logger.Warn("embedding attempt failed",
			"attempt", attempt,
			"max_attempts", e.attempts,
			"error", err,
		)
		if attempt < e.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(embedRetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("rag: embedding failed after %d attempts: %w", e.attempts, lastErr)
}
