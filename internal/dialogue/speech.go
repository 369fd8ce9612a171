package dialogue

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/navai/internal/logger"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/providers/stt"
	"github.com/yoockh/navai/internal/utils"
)

// DefaultAudioExt is used when the uploaded recording's name carries no
// recognizable extension; browsers record webm by default.
const DefaultAudioExt = ".webm"

var audioExts = map[string]bool{
	".webm": true, ".ogg": true, ".opus": true, ".wav": true, ".flac": true,
	".mp3": true, ".mp4": true, ".m4a": true, ".mpeg": true, ".mpga": true,
}

type SpeechOptions struct {
	TempDir  string // "" uses os.TempDir
	Language string // BCP-47, ex: "en-US"
	MaxBytes int64
	Timeout  time.Duration // per transcription call; 0 means none
}

// SpeechAdapter turns a recorded answer into a dialogue exchange.
type SpeechAdapter struct {
	engine *Engine
	stt    stt.Provider
	opts   SpeechOptions
	log    *logrus.Logger
}

func NewSpeechAdapter(engine *Engine, transcriber stt.Provider, opts SpeechOptions, log *logrus.Logger) *SpeechAdapter {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	if log == nil {
		log = logrus.New()
	}
	return &SpeechAdapter{engine: engine, stt: transcriber, opts: opts, log: log}
}

// AdvanceFromAudio transcribes audio and, when the transcript is not blank,
// advances it with the transcript as the candidate's answer. Transcription
// failures are always surfaced; the interview is untouched on any error.
func (a *SpeechAdapter) AdvanceFromAudio(ctx context.Context, it *models.Interview, audio io.Reader, filename string) (string, models.Turn, error) {
	const op = "SpeechAdapter.AdvanceFromAudio"

	transcript, err := a.transcribe(ctx, audio, filename)
	if err != nil {
		return "", models.Turn{}, err
	}
	if transcript == "" {
		return "", models.Turn{}, utils.E(utils.CodeInvalidArgument, op, "could not understand audio", utils.ErrEmptyTranscript)
	}

	reply, err := a.engine.Advance(ctx, it, transcript)
	if err != nil {
		return "", models.Turn{}, err
	}
	return transcript, reply, nil
}

// transcribe owns the temp recording: it is removed before returning,
// whether the transcription call succeeds or not.
func (a *SpeechAdapter) transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	const op = "SpeechAdapter.transcribe"

	if audio == nil {
		return "", utils.E(utils.CodeInvalidArgument, op, "audio file is required", nil)
	}
	if a.stt == nil {
		return "", utils.E(utils.CodeInternal, op, "speech to text failed", errors.Join(utils.ErrTranscriptionFailed, errors.New("no transcription provider configured")))
	}

	f, err := os.CreateTemp(a.opts.TempDir, "answer-*"+AudioExt(filename))
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to stage audio", err)
	}
	log := a.log.WithField("path", f.Name())
	defer func() {
		_ = f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("failed to remove temp audio")
		}
	}()

	n, err := io.Copy(f, io.LimitReader(audio, a.opts.MaxBytes+1))
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to stage audio", err)
	}
	if n > a.opts.MaxBytes {
		return "", utils.E(utils.CodeInvalidArgument, op, "audio too large", nil)
	}
	if n == 0 {
		return "", utils.E(utils.CodeInvalidArgument, op, "audio file is empty", nil)
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	text, conf, err := a.stt.TranscribeFile(ctx, f.Name(), a.opts.Language)
	if err != nil {
		log.WithError(err).Error("stt failed")
		return "", utils.E(utils.CodeInternal, op, "speech to text failed", errors.Join(utils.ErrTranscriptionFailed, err))
	}
	log.WithFields(logrus.Fields{
		"bytes":      n,
		"confidence": conf,
		"transcript": logger.TruncateForLog(text, 80),
	}).Debug("stt done")
	return strings.TrimSpace(text), nil
}

// AudioExt returns filename's extension when it names a known audio
// container, DefaultAudioExt otherwise.
func AudioExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if audioExts[ext] {
		return ext
	}
	return DefaultAudioExt
}
