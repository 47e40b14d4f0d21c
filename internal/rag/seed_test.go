package rag

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadQASeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	content := `{"questions": [
		{"question": "How do I file a claim?", "answer": "Online or by phone."},
		{"question": "", "answer": "dropped"},
		{"question": "dropped", "answer": ""},
		{"question": "What is covered?", "answer": "Third party damage."}
	]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	questions, answers, err := LoadQASeed(path)
	if err != nil {
		t.Fatalf("LoadQASeed() error = %v", err)
	}
	if len(questions) != 2 || len(answers) != 2 {
		t.Fatalf("got %d questions, %d answers; want 2 each", len(questions), len(answers))
	}
	if questions[0] != "How do I file a claim?" || answers[1] != "Third party damage." {
		t.Errorf("unexpected seed content: %v / %v", questions, answers)
	}
}

func TestLoadQASeedMissingFile(t *testing.T) {
	if _, _, err := LoadQASeed(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadQASeed() should fail for a missing file")
	}
}

func TestLoadQASeedBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadQASeed(path); err == nil {
		t.Error("LoadQASeed() should fail for invalid JSON")
	}
}
