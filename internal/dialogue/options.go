package dialogue

import "time"

const (
	// Interviewer turns after which the next exchange closes the interview.
	DefaultMaxInterviewerTurns = 10
	// Most recent turns sent to the dialogue service.
	DefaultContextWindow = 10
	// Résumé characters quoted in the preamble of ongoing exchanges.
	DefaultResumeExcerpt = 1000
	// Résumé characters quoted when generating the opening question.
	DefaultOpeningExcerpt = 3000

	FallbackUtterance = "Thank you. Let's move on to the next topic."
	OpeningFallback   = "Hello! I've reviewed your resume. Could you tell me a little about yourself?"
)

type Options struct {
	MaxInterviewerTurns int
	ContextWindow       int
	ResumeExcerpt       int
	OpeningExcerpt      int
	Timeout             time.Duration // per dialogue-service call; 0 means none
}

func (o Options) withDefaults() Options {
	if o.MaxInterviewerTurns <= 0 {
		o.MaxInterviewerTurns = DefaultMaxInterviewerTurns
	}
	if o.ContextWindow <= 0 {
		o.ContextWindow = DefaultContextWindow
	}
	if o.ResumeExcerpt <= 0 {
		o.ResumeExcerpt = DefaultResumeExcerpt
	}
	if o.OpeningExcerpt <= 0 {
		o.OpeningExcerpt = DefaultOpeningExcerpt
	}
	return o
}
