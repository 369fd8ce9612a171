package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

// kickoff is sent as the user message when the conversation has none yet;
// Gemini requires the last content of a request to come from the user.
const kickoff = "Please begin."

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Generate(ctx context.Context, messages []Message) (string, error) {
	system, history, last := toContents(messages)

	m := v.client.GenerativeModel(v.modelName)
	if system != "" {
		m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(system)}}
	}

	cs := m.StartChat()
	cs.History = history

	// streamed like the rest of our Gemini calls; fragments are concatenated
	var b strings.Builder
	it := cs.SendMessageStream(ctx, vertexgenai.Text(last))
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", err
		}
		appendText(&b, resp)
	}
	return strings.TrimSpace(b.String()), nil
}

// toContents splits messages into the system instruction, the chat history
// and the final user message. History always starts with a user entry.
func toContents(messages []Message) (string, []*vertexgenai.Content, string) {
	var system []string
	var history []*vertexgenai.Content

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleAssistant:
			if len(history) == 0 {
				history = append(history, userContent(kickoff))
			}
			history = append(history, &vertexgenai.Content{Role: "model", Parts: []vertexgenai.Part{vertexgenai.Text(msg.Content)}})
		default:
			history = append(history, userContent(msg.Content))
		}
	}

	last := kickoff
	if n := len(history); n > 0 && history[n-1].Role == "user" {
		if t, ok := history[n-1].Parts[0].(vertexgenai.Text); ok {
			last = string(t)
		}
		history = history[:n-1]
	}
	return strings.Join(system, "\n"), history, last
}

func userContent(text string) *vertexgenai.Content {
	return &vertexgenai.Content{Role: "user", Parts: []vertexgenai.Part{vertexgenai.Text(text)}}
}

func appendText(b *strings.Builder, resp *vertexgenai.GenerateContentResponse) {
	if resp == nil {
		return
	}
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
}
