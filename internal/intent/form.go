package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const formSystem = "You generate claim form definitions for ByteMe Insurance. " +
	"Reply with a JSON object {\"questions\": [..], \"locale\": \"..\"} and nothing else. " +
	"Questions must be short, in the customer's language."

// defaultFormQuestions is used when the model reply cannot be parsed.
var defaultFormQuestions = []string{
	"What is your full name?",
	"What is your policy number?",
	"What happened, and when?",
	"What is the estimated damage amount?",
	"What is the best phone number to reach you?",
}

// Form is an ordered list of questions for the customer, with an optional
// locale tag.
type Form struct {
	Questions []string `json:"questions"`
	Locale    string   `json:"locale,omitempty"`
}

// FormGenerator asks the model for claim-form questions tailored to the
// customer's request.
type FormGenerator struct {
	client LLMClient
}

// NewFormGenerator creates a form generator.
func NewFormGenerator(client LLMClient) *FormGenerator {
	if client == nil {
		panic("intent: llm client cannot be nil")
	}
	return &FormGenerator{client: client}
}

// Generate produces the form for a customer request. Unparseable model output
// falls back to the default question list rather than failing the call.
func (g *FormGenerator) Generate(ctx context.Context, text string) (Form, error) {
	resp, err := g.client.Complete(ctx, LLMRequest{
		System:    formSystem,
		Prompt:    fmt.Sprintf("The customer asked: %q\nGenerate the claim form.", text),
		MaxTokens: 300,
	})
	if err != nil {
		return Form{}, fmt.Errorf("intent: form generation failed: %w", err)
	}

	form, ok := parseForm(resp.Text)
	if !ok {
		return Form{Questions: defaultFormQuestions}, nil
	}
	return form, nil
}

func parseForm(raw string) (Form, bool) {
	raw = strings.TrimSpace(raw)
	// Models occasionally fence the JSON.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var form Form
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &form); err != nil {
		return Form{}, false
	}
	if len(form.Questions) == 0 {
		return Form{}, false
	}
	return form, true
}
