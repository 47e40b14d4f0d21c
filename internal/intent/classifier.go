package intent

import (
	"context"
	"fmt"
	"strings"
)

const (
	classifierSystem = "You are a strict intent classifier for an insurance call center. " +
		"Answer with exactly 'YES - reason' or 'NO - reason' and nothing else."

	wantsFormQuestion = "Does the customer want to fill in a claim or application form, " +
		"or submit a request that requires one?"
	wantsAgentQuestion = "Does the customer want to talk to a human agent or operator " +
		"instead of the automated assistant?"
)

// Classifier answers independent yes/no questions about a customer utterance.
// Each call is stateless; the two intents share nothing but the client.
type Classifier struct {
	client LLMClient
}

// NewClassifier creates an intent classifier.
func NewClassifier(client LLMClient) *Classifier {
	if client == nil {
		panic("intent: llm client cannot be nil")
	}
	return &Classifier{client: client}
}

// WantsForm reports whether the customer is asking to submit a claim or
// application form.
func (c *Classifier) WantsForm(ctx context.Context, text string) (bool, error) {
	return c.classify(ctx, wantsFormQuestion, text)
}

// WantsAgent reports whether the customer is asking for a human agent.
func (c *Classifier) WantsAgent(ctx context.Context, text string) (bool, error) {
	return c.classify(ctx, wantsAgentQuestion, text)
}

func (c *Classifier) classify(ctx context.Context, question, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	resp, err := c.client.Complete(ctx, LLMRequest{
		System:    classifierSystem,
		Prompt:    fmt.Sprintf("%s\n\nCustomer said: %q", question, text),
		MaxTokens: 60,
	})
	if err != nil {
		return false, fmt.Errorf("intent: classification failed: %w", err)
	}

	return strings.Contains(resp.Text, "YES"), nil
}
