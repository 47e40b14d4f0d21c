package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

const (
	// SummaryMaxChars bounds the knowledge block handed to the model.
	SummaryMaxChars = 1600

	snippetMaxChars = 300
	answerMaxTokens = 100

	composerSystemPrompt = "You are a professional call center assistant for ByteMe Insurance. " +
		"Always answer in the shortest possible way: 1 sentence if possible, maximum 2. " +
		"Be clear, friendly, and direct. " +
		"Do not repeat or rephrase the knowledge base text - just give the exact useful answer. " +
		"Preserve numbers and years exactly as written."
)

// ChatClient is the slice of the OpenAI client the composer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Composer turns retrieved documents plus the original question into a short,
// constrained natural-language answer.
type Composer struct {
	client ChatClient
	model  string
	logger *logging.Logger
}

// NewComposer creates an answer composer.
func NewComposer(client ChatClient, model string, logger *logging.Logger) *Composer {
	if client == nil {
		panic("rag: chat client cannot be nil")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Composer{client: client, model: model, logger: logger}
}

// BuildSummary concatenates documents into a numbered, newline-separated block
// capped at maxChars. The last fragment is truncated by the budget check
// rather than dropped entirely.
func BuildSummary(docs []Document, maxChars int) string {
	if maxChars <= 0 {
		maxChars = SummaryMaxChars
	}

	var lines []string
	for i, doc := range docs {
		snippet := strings.TrimSpace(strings.ReplaceAll(doc.Content, "\n", " "))
		if snippet == "" {
			continue
		}
		if len(snippet) > snippetMaxChars {
			snippet = strings.TrimRight(snippet[:snippetMaxChars], " ") + "…"
		}

		var tags []string
		if doc.Source != "" {
			tags = append(tags, fmt.Sprintf("source=%s", doc.Source))
		}
		if doc.Distance > 0 {
			tags = append(tags, fmt.Sprintf("score=%.4f", doc.Distance))
		}
		tag := ""
		if len(tags) > 0 {
			tag = fmt.Sprintf(" [%s]", strings.Join(tags, ", "))
		}

		lines = append(lines, fmt.Sprintf("%d. %s%s", i+1, snippet, tag))
		if len(strings.Join(lines, "\n")) >= maxChars {
			break
		}
	}

	return strings.Join(lines, "\n")
}

// Compose asks the model for a short answer grounded in the retrieved
// documents. Returns ErrNoAnswer when no summary can be derived.
func (c *Composer) Compose(ctx context.Context, query string, docs []Document) (string, error) {
	summary := BuildSummary(docs, SummaryMaxChars)
	if summary == "" {
		return "", ErrNoAnswer
	}

	userPrompt := fmt.Sprintf(
		"Customer asked: %s\n\nKnowledge base entry:\n%s\n\nAnswer the customer with the shortest possible helpful response.",
		query, summary,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		MaxTokens:   answerMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: composerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("rag: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("rag: completion returned no choices")
	}

	return capTwoSentences(strings.TrimSpace(resp.Choices[0].Message.Content)), nil
}

// capTwoSentences hard-stops the reply at two sentence-terminating periods.
func capTwoSentences(s string) string {
	if strings.Count(s, ".") <= 2 {
		return s
	}
	parts := strings.Split(s, ".")
	return strings.TrimSpace(strings.Join(parts[:2], ".")) + "."
}
