package extract

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/navai/internal/utils"
)

const (
	// Below this many characters a PDF is treated as scanned and recognition runs.
	DefaultRecognitionThreshold = 100
	DefaultMaxBytes             = 10 << 20
)

// Recognizer derives text from a rasterised document; see providers/ocr.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

type Options struct {
	TempDir              string // "" uses os.TempDir
	RecognitionThreshold int
	MaxBytes             int64
	ExtractionTimeout    time.Duration
	RecognitionTimeout   time.Duration
}

// Document is an uploaded file as declared by the client.
type Document struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Extractor struct {
	text TextSource
	ocr  Recognizer // nil disables the fallback
	opts Options
	log  *logrus.Logger
}

func New(text TextSource, ocr Recognizer, opts Options, log *logrus.Logger) *Extractor {
	if text == nil {
		text = NativeText{}
	}
	if opts.RecognitionThreshold <= 0 {
		opts.RecognitionThreshold = DefaultRecognitionThreshold
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logrus.New()
	}
	return &Extractor{text: text, ocr: ocr, opts: opts, log: log}
}

// Extract converts doc into plain text. The upload is spooled to a temp file
// that is removed before Extract returns, whatever the outcome.
func (e *Extractor) Extract(ctx context.Context, doc Document) (string, error) {
	const op = "Extractor.Extract"

	kind, ok := DetectKind(doc.Filename, doc.ContentType)
	if !ok {
		return "", utils.E(utils.CodeInvalidArgument, op, "unsupported file format, please upload PDF or DOCX", utils.ErrUnsupportedFormat)
	}

	path, cleanup, err := e.spool(doc.Body, kind)
	if err != nil {
		return "", err
	}
	defer cleanup()

	text, err := e.native(ctx, path, kind)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to extract text from resume", errors.Join(utils.ErrExtractionFailed, err))
	}

	if kind == KindPDF && e.ocr != nil && textLen(text) < e.opts.RecognitionThreshold {
		text = e.withRecognition(ctx, path, text)
	}
	return text, nil
}

func (e *Extractor) native(ctx context.Context, path string, kind Kind) (string, error) {
	if e.opts.ExtractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.ExtractionTimeout)
		defer cancel()
	}
	return e.text.Text(ctx, path, kind)
}

// withRecognition runs the recognizer and keeps the longer candidate.
// Recognition errors are logged and never fail the extraction.
func (e *Extractor) withRecognition(ctx context.Context, path, direct string) string {
	if e.opts.RecognitionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RecognitionTimeout)
		defer cancel()
	}

	log := e.log.WithFields(logrus.Fields{"direct_chars": textLen(direct)})
	recognized, err := e.ocr.Recognize(ctx, path)
	if err != nil {
		log.WithError(errors.Join(utils.ErrRecognitionUnavailable, err)).Warn("ocr failed, proceeding with direct text")
		return direct
	}

	log.WithField("ocr_chars", textLen(recognized)).Debug("ocr fallback finished")
	if textLen(recognized) > textLen(direct) {
		return recognized
	}
	return direct
}

func (e *Extractor) spool(r io.Reader, kind Kind) (string, func(), error) {
	const op = "Extractor.spool"

	if r == nil {
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "document body is required", nil)
	}

	f, err := os.CreateTemp(e.opts.TempDir, "resume-*"+kind.Ext())
	if err != nil {
		return "", nil, utils.E(utils.CodeInternal, op, "failed to stage upload", err)
	}
	cleanup := func() {
		_ = f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.log.WithError(err).WithField("path", f.Name()).Warn("failed to remove temp upload")
		}
	}

	n, err := io.Copy(f, io.LimitReader(r, e.opts.MaxBytes+1))
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		cleanup()
		return "", nil, utils.E(utils.CodeInternal, op, "failed to stage upload", err)
	}
	if n > e.opts.MaxBytes {
		cleanup()
		return "", nil, utils.E(utils.CodeInvalidArgument, op, "file too large", nil)
	}
	return f.Name(), cleanup, nil
}

func textLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }
