package dialogue

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/providers/llm"
)

// scriptedLLM answers with replies in order; an entry in fail makes that
// call (1-based) return err instead.
type scriptedLLM struct {
	mu    sync.Mutex
	calls [][]llm.Message
	fail  map[int]error
	reply func(n int) string
}

func (s *scriptedLLM) Generate(_ context.Context, msgs []llm.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, msgs)
	n := len(s.calls)
	if err, ok := s.fail[n]; ok {
		return "", err
	}
	if s.reply != nil {
		return s.reply(n), nil
	}
	if strings.Contains(msgs[0].Content, "final exchange") {
		return "Thank you for your time, the interview is concluded. You communicated clearly.", nil
	}
	return "Next question?", nil
}

func (s *scriptedLLM) Close() error { return nil }

func (s *scriptedLLM) lastCall() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type fakeSTT struct {
	text string
	err  error

	path     string
	existed  bool
	language string
}

func (f *fakeSTT) TranscribeFile(_ context.Context, path, language string) (string, float64, error) {
	f.path = path
	f.language = language
	_, statErr := os.Stat(path)
	f.existed = statErr == nil
	return f.text, 0.9, f.err
}

func (f *fakeSTT) Close() error { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seededInterview() *models.Interview {
	return &models.Interview{
		ID:            "it-1",
		OwnerID:       "owner-1",
		ResumeText:    strings.Repeat("Go engineer with distributed systems experience. ", 100),
		InterviewType: models.InterviewTechnical,
		Turns:         []models.Turn{{Role: models.RoleInterviewer, Content: "Welcome! Tell me about yourself."}},
	}
}
