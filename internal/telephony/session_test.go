package telephony

import (
	"testing"
	"time"
)

func TestSessionsFirstContactPerCall(t *testing.T) {
	s := NewSessions(time.Hour)

	if !s.FirstContact("CA1") {
		t.Error("first visit should report first contact")
	}
	if s.FirstContact("CA1") {
		t.Error("second visit should not report first contact")
	}

	// Another concurrent call has independent state.
	if !s.FirstContact("CA2") {
		t.Error("a different call should get its own greeting")
	}
}

func TestSessionsPromptCycle(t *testing.T) {
	s := NewSessions(time.Hour)

	if !s.FirstPrompt("CA1") {
		t.Error("first prompt should fire")
	}
	if s.FirstPrompt("CA1") {
		t.Error("prompt should only fire once per intent")
	}

	s.ResetPrompt("CA1")
	if !s.FirstPrompt("CA1") {
		t.Error("prompt should re-arm after returning to the menu")
	}
}

func TestSessionsEnd(t *testing.T) {
	s := NewSessions(time.Hour)

	s.FirstContact("CA1")
	s.End("CA1")
	if !s.FirstContact("CA1") {
		t.Error("a new call with a recycled sid should start fresh")
	}
}
