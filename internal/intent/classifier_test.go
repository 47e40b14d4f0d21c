package intent

import (
	"context"
	"errors"
	"testing"
)

type mockLLMClient struct {
	response string
	err      error
	gotReq   LLMRequest
}

func (m *mockLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	m.gotReq = req
	if m.err != nil {
		return LLMResponse{}, m.err
	}
	return LLMResponse{Text: m.response}, nil
}

func TestClassifierWantsForm(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"affirmative", "YES - the customer asked to file a claim", true},
		{"negative", "NO - just a coverage question", false},
		{"yes embedded", "Answer: YES - form requested", true},
		{"lowercase yes is not a match", "yes - maybe", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifier(&mockLLMClient{response: tt.response})
			got, err := classifier.WantsForm(context.Background(), "I want to file a claim")
			if err != nil {
				t.Fatalf("WantsForm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("WantsForm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifierEmptyText(t *testing.T) {
	client := &mockLLMClient{response: "YES - should never be called"}
	classifier := NewClassifier(client)

	got, err := classifier.WantsAgent(context.Background(), "   ")
	if err != nil || got {
		t.Errorf("WantsAgent(blank) = %v, %v; want false, nil", got, err)
	}
	if client.gotReq.Prompt != "" {
		t.Error("blank input must be rejected before any model call")
	}
}

func TestClassifierUpstreamError(t *testing.T) {
	classifier := NewClassifier(&mockLLMClient{err: errors.New("timeout")})

	if _, err := classifier.WantsAgent(context.Background(), "agent please"); err == nil {
		t.Error("WantsAgent() should surface upstream errors")
	}
}

func TestClassifiersAreIndependent(t *testing.T) {
	form := &mockLLMClient{response: "NO - nothing"}
	agent := &mockLLMClient{response: "YES - asked for operator"}

	formGot, _ := NewClassifier(form).WantsForm(context.Background(), "text")
	agentGot, _ := NewClassifier(agent).WantsAgent(context.Background(), "text")

	if formGot || !agentGot {
		t.Errorf("WantsForm = %v, WantsAgent = %v; want false, true", formGot, agentGot)
	}
	if form.gotReq.Prompt == agent.gotReq.Prompt {
		t.Error("the two classifiers should use different prompts")
	}
}
