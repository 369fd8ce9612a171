package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

type InterviewType string

const (
	InterviewHR         InterviewType = "HR"
	InterviewTechnical  InterviewType = "Technical"
	InterviewBehavioral InterviewType = "Behavioral"
)

// ParseInterviewType matches case-insensitively; an empty value defaults to HR.
func ParseInterviewType(v string) (InterviewType, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "hr":
		return InterviewHR, true
	case "technical":
		return InterviewTechnical, true
	case "behavioral", "behavioural":
		return InterviewBehavioral, true
	default:
		return "", false
	}
}

// Turn is one utterance of the transcript.
type Turn struct {
	Role      Role      `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Interview is the conversational record for one interview attempt.
// Turns is append-only; its order is the transcript of record.
type Interview struct {
	ID            string        `bson:"interview_id" json:"id"`                                 // uuid v4
	OwnerID       string        `bson:"owner_id" json:"owner_id"`                               // subject of the caller's token
	ResumeText    string        `bson:"resume_text" json:"resume_text"`                         // immutable after creation
	ResumeObject  string        `bson:"resume_object,omitempty" json:"resume_object,omitempty"` // archived document, if any
	InterviewType InterviewType `bson:"interview_type" json:"interview_type"`
	Turns         []Turn        `bson:"turns" json:"turns"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}

func (it *Interview) InterviewerTurns() int {
	n := 0
	for _, t := range it.Turns {
		if t.Role == RoleInterviewer {
			n++
		}
	}
	return n
}
