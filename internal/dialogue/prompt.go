package dialogue

import (
	"fmt"
	"strings"

	"github.com/yoockh/navai/internal/models"
)

const concludeDirective = `
IMPORTANT: This is the final exchange. Do NOT ask any more questions.
Instead, briefly thank the candidate, state that the interview is concluded, and give a one-sentence closing evaluation of their performance.`

// OpeningPreamble instructs the service to greet the candidate and ask the first question.
func OpeningPreamble(typ models.InterviewType, resume string, excerpt int) string {
	return fmt.Sprintf(`You are an expert %s interviewer.
The candidate has uploaded their resume. Your goal is to conduct a professional interview.
Start by welcoming them and asking the first question based on their resume.
Keep your response concise (2-3 sentences) so it works as spoken conversation.
Ask one question at a time.
Do not use markdown or any other formatting markup.
Resume Content: "%s"`, interviewer(typ), Excerpt(resume, excerpt))
}

// TurnPreamble instructs the service for an ongoing exchange. concluding
// appends the directive that closes the interview.
func TurnPreamble(typ models.InterviewType, resume string, excerpt int, concluding bool) string {
	p := fmt.Sprintf(`You are an expert %s interviewer.
Maintain a professional but conversational tone.
Keep responses concise (2-3 sentences) so they work as spoken conversation.
Ask one question at a time.
Do not use markdown or any other formatting markup.
If the candidate's answer is vague, ask for clarification.
Resume Context: "%s"`, interviewer(typ), Excerpt(resume, excerpt))
	if concluding {
		p += concludeDirective
	}
	return p
}

// Excerpt returns at most n runes of s, marking the cut with an ellipsis.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func interviewer(typ models.InterviewType) string {
	if typ == "" {
		return string(models.InterviewHR)
	}
	return string(typ)
}
