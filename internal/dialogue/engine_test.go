package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/providers/llm"
	"github.com/yoockh/navai/internal/utils"
)

func TestOpenSeedsSingleInterviewerTurn(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{reply: func(int) string { return "  Welcome! What drew you to backend work?  " }}
	e := NewEngine(fake, Options{}, quietLogger())
	it := &models.Interview{InterviewType: models.InterviewTechnical, ResumeText: strings.Repeat("r", 3500)}

	turn, err := e.Open(context.Background(), it)
	require.NoError(t, err)

	require.Len(t, it.Turns, 1)
	assert.Equal(t, models.RoleInterviewer, turn.Role)
	assert.Equal(t, "Welcome! What drew you to backend work?", turn.Content)
	assert.False(t, turn.Timestamp.IsZero())

	call := fake.lastCall()
	require.Len(t, call, 1, "opening call carries only the preamble")
	assert.Equal(t, llm.RoleSystem, call[0].Role)
	assert.Contains(t, call[0].Content, strings.Repeat("r", 3000)+"...")
}

func TestOpenFailsWhenDialogueServiceFails(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{fail: map[int]error{1: errors.New("503 from upstream")}}
	e := NewEngine(fake, Options{}, quietLogger())
	it := &models.Interview{ResumeText: "resume"}

	_, err := e.Open(context.Background(), it)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrDialogueUnavailable)
	assert.Empty(t, it.Turns)
}

func TestOpenEmptyReplyUsesGreeting(t *testing.T) {
	t.Parallel()

	e := NewEngine(&scriptedLLM{reply: func(int) string { return "   " }}, Options{}, quietLogger())
	it := &models.Interview{ResumeText: "resume"}

	turn, err := e.Open(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, OpeningFallback, turn.Content)
}

func TestAdvanceGrowsTranscriptByTwo(t *testing.T) {
	t.Parallel()

	e := NewEngine(&scriptedLLM{}, Options{}, quietLogger())
	it := seededInterview()

	for n := 1; n <= 7; n++ {
		before := it.InterviewerTurns()
		_, err := e.Advance(context.Background(), it, "answer")
		require.NoError(t, err)
		assert.Len(t, it.Turns, 1+2*n)
		assert.Equal(t, before+1, it.InterviewerTurns())
	}
	assert.Equal(t, models.RoleInterviewer, it.Turns[0].Role)
}

func TestAdvanceAppendsCandidateThenInterviewer(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{}
	e := NewEngine(fake, Options{}, quietLogger())
	it := seededInterview()

	reply, err := e.Advance(context.Background(), it, "  I led the payments migration.  ")
	require.NoError(t, err)

	require.Len(t, it.Turns, 3)
	assert.Equal(t, models.Turn{Role: models.RoleCandidate, Content: "I led the payments migration.", Timestamp: it.Turns[1].Timestamp}, it.Turns[1])
	assert.Equal(t, reply, it.Turns[2])
	assert.Equal(t, "Next question?", reply.Content)

	call := fake.lastCall()
	require.Len(t, call, 3)
	assert.Contains(t, call[0].Content, "Resume Context")
	assert.NotContains(t, call[0].Content, "final exchange")
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Welcome! Tell me about yourself."}, call[1])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "I led the payments migration."}, call[2])
}

func TestAdvanceRejectsBlankAnswer(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{}
	e := NewEngine(fake, Options{}, quietLogger())
	it := seededInterview()

	_, err := e.Advance(context.Background(), it, " \n\t ")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Len(t, it.Turns, 1)
	assert.Empty(t, fake.calls)
}

func TestAdvanceFallsBackOnGenerationFailure(t *testing.T) {
	t.Parallel()

	// call 5 is the fifth answer: the dialogue service errors there only.
	fake := &scriptedLLM{fail: map[int]error{5: errors.New("connection reset")}}
	e := NewEngine(fake, Options{}, quietLogger())
	it := seededInterview()

	for n := 1; n <= 6; n++ {
		reply, err := e.Advance(context.Background(), it, "answer")
		require.NoError(t, err, "turn %d", n)
		if n == 5 {
			assert.Equal(t, FallbackUtterance, reply.Content)
		} else {
			assert.Equal(t, "Next question?", reply.Content)
		}
	}
	assert.Len(t, it.Turns, 13)
}

func TestAdvanceFallsBackOnEmptyReply(t *testing.T) {
	t.Parallel()

	e := NewEngine(&scriptedLLM{reply: func(int) string { return "" }}, Options{}, quietLogger())
	it := seededInterview()

	reply, err := e.Advance(context.Background(), it, "answer")
	require.NoError(t, err)
	assert.Equal(t, FallbackUtterance, reply.Content)
}

func TestAdvanceConcludesAfterTenInterviewerTurns(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{}
	e := NewEngine(fake, Options{}, quietLogger())
	it := seededInterview()

	for n := 1; n <= 10; n++ {
		_, err := e.Advance(context.Background(), it, "answer")
		require.NoError(t, err)

		concluding := strings.Contains(fake.lastCall()[0].Content, "final exchange")
		assert.Equal(t, n == 10, concluding, "answer %d", n)
	}

	require.Len(t, it.Turns, 21)
	last := it.Turns[20]
	assert.Equal(t, models.RoleInterviewer, last.Role)
	assert.Contains(t, last.Content, "concluded")
	assert.NotContains(t, last.Content, "?")
	assert.Equal(t, PhaseConcluded, PhaseOf(it, DefaultMaxInterviewerTurns))

	// Further answers stay mechanically possible and keep the closing variant.
	_, err := e.Advance(context.Background(), it, "one more thing")
	require.NoError(t, err)
	assert.Contains(t, fake.lastCall()[0].Content, "final exchange")
}

func TestAdvanceWindowIsBounded(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{}
	e := NewEngine(fake, Options{}, quietLogger())
	it := seededInterview()

	for n := 1; n <= 8; n++ {
		_, err := e.Advance(context.Background(), it, "answer")
		require.NoError(t, err)
	}

	call := fake.lastCall()
	assert.Len(t, call, 1+DefaultContextWindow)
	assert.Equal(t, llm.RoleUser, call[len(call)-1].Role)
}

func TestAdvanceHonoursCustomThresholds(t *testing.T) {
	t.Parallel()

	fake := &scriptedLLM{}
	e := NewEngine(fake, Options{MaxInterviewerTurns: 2, ContextWindow: 2}, quietLogger())
	it := seededInterview()

	_, err := e.Advance(context.Background(), it, "first")
	require.NoError(t, err)
	assert.NotContains(t, fake.lastCall()[0].Content, "final exchange")
	assert.Len(t, fake.lastCall(), 3)

	_, err = e.Advance(context.Background(), it, "second")
	require.NoError(t, err)
	assert.Contains(t, fake.lastCall()[0].Content, "final exchange")
	assert.Len(t, fake.lastCall(), 3)
}
