package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/predicare/voicebot/internal/config"
)

var (
	ErrEmptyAudio    = errors.New("empty audio")
	ErrNotConfigured = errors.New("GROQ_API_KEY not configured")
)

// GroqClient runs Whisper through Groq's OpenAI-compatible endpoint.
type GroqClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	enabled bool
}

func NewGroqClient(cfg *config.Config) *GroqClient {
	oc := openai.DefaultConfig(cfg.GroqAPIKey)
	oc.BaseURL = cfg.GroqBaseURL

	return &GroqClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.STTModel,
		timeout: cfg.STTTimeout,
		enabled: cfg.GroqConfigured(),
	}
}

func (c *GroqClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if !c.enabled {
		return "", ErrNotConfigured
	}

	if filename == "" {
		filename = "audio.wav"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Reader keeps the audio in memory; FilePath only names the upload.
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("groq transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("empty transcript")
	}

	return text, nil
}
