package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultWhisperModel = "whisper-large-v3"

// Whisper uses an OpenAI-compatible transcription endpoint. The request is
// built from a file path so the service sees the real extension.
type Whisper struct {
	client *openai.Client
	model  string
}

func NewWhisper(apiKey, baseURL, model string) (*Whisper, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("transcription api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultWhisperModel
	}
	return &Whisper{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (w *Whisper) Close() error { return nil }

func (w *Whisper) TranscribeFile(ctx context.Context, path, language string) (string, float64, error) {
	req := openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
	}
	// whisper wants ISO-639-1 ("en"), not a BCP-47 tag.
	if language != "" {
		req.Language = strings.ToLower(strings.SplitN(language, "-", 2)[0])
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("create transcription: %w", err)
	}
	// whisper reports no confidence
	return strings.TrimSpace(resp.Text), 1, nil
}
