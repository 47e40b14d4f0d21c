// Package speech wraps text-to-speech and speech-to-text around the OpenAI
// audio endpoints. Synthesized audio lands as MP3 files under a local
// directory, addressed by a fresh UUID per request.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// audioClient is the slice of the OpenAI client the service needs.
type audioClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Service converts text to MP3 files and audio files back to text.
type Service struct {
	client   audioClient
	ttsModel string
	voice    string
	sttModel string
	audioDir string
	logger   *logging.Logger
}

// NewService creates a speech service writing audio files under audioDir.
func NewService(client audioClient, ttsModel, voice, sttModel, audioDir string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if ttsModel == "" {
		ttsModel = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	if sttModel == "" {
		sttModel = openai.Whisper1
	}
	return &Service{
		client:   client,
		ttsModel: ttsModel,
		voice:    voice,
		sttModel: sttModel,
		audioDir: audioDir,
		logger:   logger,
	}
}

// Synthesize renders text as an MP3 file and returns its path.
func (s *Service) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("speech: text is empty")
	}
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("speech: create audio dir: %w", err)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.ttsModel),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return "", fmt.Errorf("speech: synthesize: %w", err)
	}
	defer resp.Close()

	path := filepath.Join(s.audioDir, strings.ReplaceAll(uuid.NewString(), "-", "")+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("speech: create audio file: %w", err)
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("speech: write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("speech: close audio file: %w", err)
	}

	s.logger.Debug("synthesized audio", "path", path, "chars", len(text))
	return path, nil
}

// Transcribe returns the text spoken in an audio file.
func (s *Service) Transcribe(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", errors.New("speech: audio path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("speech: audio file: %w", err)
	}

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.sttModel,
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	return resp.Text, nil
}
