package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// VertexVision renders pages locally and asks Gemini to transcribe them.
type VertexVision struct {
	client    *vertexgenai.Client
	modelName string
	opts      Options
}

func NewVertexVision(ctx context.Context, projectID, location, modelName string, opts Options) (*VertexVision, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexVision{client: c, modelName: modelName, opts: opts.withDefaults()}, nil
}

func (v *VertexVision) Close() error { return v.client.Close() }

func (v *VertexVision) Recognize(ctx context.Context, path string) (string, error) {
	pages, err := renderPages(ctx, path, v.opts.DPI, v.opts.Quality, v.opts.MaxPages)
	if err != nil {
		return "", err
	}

	parts := make([]vertexgenai.Part, 0, len(pages)+1)
	parts = append(parts, vertexgenai.Text(instruction(v.opts.Language)))
	for _, p := range pages {
		parts = append(parts, vertexgenai.ImageData("jpeg", p))
	}

	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(0)

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("recognize pages: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func instruction(language string) string {
	return "The following images are consecutive pages of a scanned resume written in " + language + ". " +
		"Transcribe all visible text exactly as written, page by page, in reading order. " +
		"Output plain text only, without commentary or formatting markup."
}
