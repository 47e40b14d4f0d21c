package speech

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type mockAudioClient struct {
	speechData      string
	speechErr       error
	transcript      string
	transcribeErr   error
	gotSpeechReq    openai.CreateSpeechRequest
	gotAudioReq     openai.AudioRequest
	speechCalls     int
	transcribeCalls int
}

func (m *mockAudioClient) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	m.speechCalls++
	m.gotSpeechReq = req
	if m.speechErr != nil {
		return openai.RawResponse{}, m.speechErr
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader(m.speechData))}, nil
}

func (m *mockAudioClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	m.transcribeCalls++
	m.gotAudioReq = req
	if m.transcribeErr != nil {
		return openai.AudioResponse{}, m.transcribeErr
	}
	return openai.AudioResponse{Text: m.transcript}, nil
}

func TestSynthesizeWritesMP3(t *testing.T) {
	client := &mockAudioClient{speechData: "fake-mp3-bytes"}
	svc := NewService(client, "tts-1", "alloy", "whisper-1", t.TempDir(), nil)

	path, err := svc.Synthesize(context.Background(), "Hello caller")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if filepath.Ext(path) != ".mp3" {
		t.Errorf("Synthesize() path = %q, want an .mp3 file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading audio file: %v", err)
	}
	if string(data) != "fake-mp3-bytes" {
		t.Errorf("audio file content = %q", data)
	}
	if client.gotSpeechReq.Voice != openai.VoiceAlloy || client.gotSpeechReq.Input != "Hello caller" {
		t.Errorf("unexpected speech request: %+v", client.gotSpeechReq)
	}
}

func TestSynthesizeUniquePaths(t *testing.T) {
	client := &mockAudioClient{speechData: "x"}
	svc := NewService(client, "", "", "", t.TempDir(), nil)

	first, err := svc.Synthesize(context.Background(), "one")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	second, err := svc.Synthesize(context.Background(), "two")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if first == second {
		t.Error("each synthesis should get its own file")
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	client := &mockAudioClient{}
	svc := NewService(client, "", "", "", t.TempDir(), nil)

	if _, err := svc.Synthesize(context.Background(), "  "); err == nil {
		t.Error("Synthesize() should reject empty text")
	}
	if client.speechCalls != 0 {
		t.Error("empty text must be rejected before any API call")
	}
}

func TestSynthesizeUpstreamError(t *testing.T) {
	svc := NewService(&mockAudioClient{speechErr: errors.New("quota")}, "", "", "", t.TempDir(), nil)

	if _, err := svc.Synthesize(context.Background(), "hello"); err == nil {
		t.Error("Synthesize() should surface upstream errors")
	}
}

func TestTranscribe(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "call.mp3")
	if err := os.WriteFile(audioPath, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := &mockAudioClient{transcript: "what does my policy cover"}
	svc := NewService(client, "", "", "whisper-1", dir, nil)

	text, err := svc.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "what does my policy cover" {
		t.Errorf("Transcribe() = %q", text)
	}
	if client.gotAudioReq.Model != "whisper-1" || client.gotAudioReq.FilePath != audioPath {
		t.Errorf("unexpected audio request: %+v", client.gotAudioReq)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client := &mockAudioClient{}
	svc := NewService(client, "", "", "", t.TempDir(), nil)

	if _, err := svc.Transcribe(context.Background(), "/nonexistent/file.mp3"); err == nil {
		t.Error("Transcribe() should fail for a missing file")
	}
	if client.transcribeCalls != 0 {
		t.Error("a missing file must be rejected before any API call")
	}
}
