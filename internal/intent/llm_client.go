package intent

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// LLMRequest is a minimal completion request for yes/no classification and
// form generation calls.
type LLMRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// LLMResponse carries the raw model text.
type LLMResponse struct {
	Text string
}

// LLMClient abstracts the completion provider so classifiers can be tested
// without network access.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// OpenAIClient adapts the OpenAI chat API to LLMClient.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient wraps an OpenAI client for classification calls.
func NewOpenAIClient(client *openai.Client, model string) *OpenAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{client: client, model: model}
}

// Complete issues a single chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("intent: completion returned no choices")
	}
	return LLMResponse{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}
