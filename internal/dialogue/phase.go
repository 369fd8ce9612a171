package dialogue

import "github.com/yoockh/navai/internal/models"

type Phase string

const (
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseConcluded      Phase = "concluded"
)

// Concluding reports whether the next exchange is the closing one. It is
// derived from the interviewer turn count; there is no stored state.
func Concluding(it *models.Interview, maxInterviewerTurns int) bool {
	return it.InterviewerTurns() >= maxInterviewerTurns
}

// PhaseOf reports the resting phase of it. An interview is concluded once the
// closing interviewer turn has been appended.
func PhaseOf(it *models.Interview, maxInterviewerTurns int) Phase {
	if it.InterviewerTurns() > maxInterviewerTurns {
		return PhaseConcluded
	}
	return PhaseAwaitingAnswer
}
