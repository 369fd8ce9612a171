package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/providers/llm"
	"github.com/yoockh/navai/internal/utils"
)

// Engine drives one conversational exchange at a time. It mutates the
// interview it is given only by appending turns; callers serialise access
// per interview and persist what was appended.
type Engine struct {
	llm  llm.Provider
	opts Options
	log  *logrus.Logger
	now  func() time.Time
}

func NewEngine(p llm.Provider, opts Options, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		llm:  p,
		opts: opts.withDefaults(),
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) Options() Options { return e.opts }

// Open generates the opening question from the résumé alone and appends it.
// A dialogue-service failure is fatal here: there is no session to degrade into.
func (e *Engine) Open(ctx context.Context, it *models.Interview) (models.Turn, error) {
	const op = "Engine.Open"

	if len(it.Turns) != 0 {
		return models.Turn{}, utils.E(utils.CodeConflict, op, "interview already has turns", nil)
	}

	msgs := []llm.Message{{
		Role:    llm.RoleSystem,
		Content: OpeningPreamble(it.InterviewType, it.ResumeText, e.opts.OpeningExcerpt),
	}}
	text, err := e.generate(ctx, msgs)
	if err != nil {
		return models.Turn{}, utils.E(utils.CodeInternal, op, "failed to generate the opening question", errors.Join(utils.ErrDialogueUnavailable, err))
	}
	if text == "" {
		text = OpeningFallback
	}
	return e.appendTurn(it, models.RoleInterviewer, text), nil
}

// Advance appends the candidate's answer and the interviewer's reply. Once
// the interviewer has spoken MaxInterviewerTurns times, every further reply
// is generated with the closing directive. Generation failures never reach
// the caller; the reply degrades to FallbackUtterance.
func (e *Engine) Advance(ctx context.Context, it *models.Interview, incoming string) (models.Turn, error) {
	const op = "Engine.Advance"

	incoming = strings.TrimSpace(incoming)
	if incoming == "" {
		return models.Turn{}, utils.E(utils.CodeInvalidArgument, op, "answer text is required", nil)
	}

	e.appendTurn(it, models.RoleCandidate, incoming)

	concluding := Concluding(it, e.opts.MaxInterviewerTurns)
	preamble := TurnPreamble(it.InterviewType, it.ResumeText, e.opts.ResumeExcerpt, concluding)
	msgs := BuildWindow(preamble, it.Turns, e.opts.ContextWindow)

	text, err := e.generate(ctx, msgs)
	if err != nil || text == "" {
		entry := e.log.WithFields(logrus.Fields{
			"interview_id": it.ID,
			"turns":        len(it.Turns),
			"concluding":   concluding,
		})
		if err != nil {
			entry = entry.WithError(errors.Join(utils.ErrDialogueUnavailable, err))
		}
		entry.Warn("dialogue generation failed, using fallback utterance")
		text = FallbackUtterance
	}
	return e.appendTurn(it, models.RoleInterviewer, text), nil
}

func (e *Engine) generate(ctx context.Context, msgs []llm.Message) (string, error) {
	if e.llm == nil {
		return "", errors.New("no dialogue provider configured")
	}
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}
	text, err := e.llm.Generate(ctx, msgs)
	return strings.TrimSpace(text), err
}

func (e *Engine) appendTurn(it *models.Interview, role models.Role, content string) models.Turn {
	t := models.Turn{Role: role, Content: content, Timestamp: e.now()}
	it.Turns = append(it.Turns, t)
	return t
}
