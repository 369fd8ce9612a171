package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a chat request.
type Message struct {
	Role    string
	Content string
}

type Provider interface {
	// Generate returns the model's reply to an ordered, role-tagged conversation.
	Generate(ctx context.Context, messages []Message) (string, error)
	Close() error
}
