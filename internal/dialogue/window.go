package dialogue

import (
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/providers/llm"
)

// BuildWindow returns the preamble as a system entry followed by the last
// limit turns in their original order, with roles mapped for the dialogue
// service. Older turns are dropped, not summarised.
func BuildWindow(preamble string, turns []models.Turn, limit int) []llm.Message {
	if limit < 0 {
		limit = 0
	}
	start := len(turns) - limit
	if start < 0 {
		start = 0
	}

	out := make([]llm.Message, 0, len(turns)-start+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: preamble})
	for _, t := range turns[start:] {
		out = append(out, llm.Message{Role: serviceRole(t.Role), Content: t.Content})
	}
	return out
}

func serviceRole(r models.Role) string {
	if r == models.RoleInterviewer {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}
