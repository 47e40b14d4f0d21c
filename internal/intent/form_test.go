package intent

import (
	"context"
	"errors"
	"testing"
)

func TestGenerateFormParsesJSON(t *testing.T) {
	client := &mockLLMClient{response: `{"questions": ["Name?", "Policy number?"], "locale": "ro"}`}
	gen := NewFormGenerator(client)

	form, err := gen.Generate(context.Background(), "vreau sa depun o dauna")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(form.Questions) != 2 || form.Questions[0] != "Name?" {
		t.Errorf("unexpected questions: %v", form.Questions)
	}
	if form.Locale != "ro" {
		t.Errorf("locale = %q, want ro", form.Locale)
	}
}

func TestGenerateFormFencedJSON(t *testing.T) {
	client := &mockLLMClient{response: "```json\n{\"questions\": [\"Q1\"]}\n```"}
	gen := NewFormGenerator(client)

	form, err := gen.Generate(context.Background(), "claim")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(form.Questions) != 1 || form.Questions[0] != "Q1" {
		t.Errorf("unexpected questions: %v", form.Questions)
	}
}

func TestGenerateFormFallsBackOnGarbage(t *testing.T) {
	gen := NewFormGenerator(&mockLLMClient{response: "I cannot do that"})

	form, err := gen.Generate(context.Background(), "claim")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(form.Questions) != len(defaultFormQuestions) {
		t.Errorf("expected the default question list, got %v", form.Questions)
	}
}

func TestGenerateFormUpstreamError(t *testing.T) {
	gen := NewFormGenerator(&mockLLMClient{err: errors.New("boom")})

	if _, err := gen.Generate(context.Background(), "claim"); err == nil {
		t.Error("Generate() should surface upstream errors")
	}
}
