package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/navai/internal/cache"
	"github.com/yoockh/navai/internal/dialogue"
	"github.com/yoockh/navai/internal/extract"
	"github.com/yoockh/navai/internal/lock"
	"github.com/yoockh/navai/internal/models"
	"github.com/yoockh/navai/internal/repositories"
	"github.com/yoockh/navai/internal/storage"
	"github.com/yoockh/navai/internal/utils"
)

const (
	// Résumés whose extracted text is shorter than this are rejected.
	DefaultMinResumeLength = 50
	DefaultRecentLimit     = 5
)

type InterviewService interface {
	Start(ctx context.Context, ownerID, interviewType string, doc extract.Document) (*models.Interview, error)
	SubmitText(ctx context.Context, interviewID, text string) (*models.Interview, models.Turn, error)
	SubmitAudio(ctx context.Context, interviewID string, audio io.Reader, filename string) (*models.Interview, string, models.Turn, error)
	Get(ctx context.Context, interviewID string) (*models.Interview, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Interview, error)
	ListRecentByOwner(ctx context.Context, ownerID string, n int) ([]models.Interview, error)
}

// DocumentExtractor is satisfied by *extract.Extractor.
type DocumentExtractor interface {
	Extract(ctx context.Context, doc extract.Document) (string, error)
}

type InterviewOptions struct {
	MinResumeLength int
	RecentLimit     int
	MaxUploadBytes  int64
	CacheTTL        time.Duration
}

type InterviewDeps struct {
	Repo      repositories.InterviewRepository
	Extractor DocumentExtractor
	Engine    *dialogue.Engine
	Speech    *dialogue.SpeechAdapter
	Locker    lock.Locker      // nil uses an in-process locker
	Cache     cache.Cache      // nil disables caching
	Archive   storage.Uploader // nil disables résumé archiving
	Logger    *logrus.Logger
}

type interviewService struct {
	repo      repositories.InterviewRepository
	extractor DocumentExtractor
	engine    *dialogue.Engine
	speech    *dialogue.SpeechAdapter
	locker    lock.Locker
	cache     cache.Cache
	archive   storage.Uploader
	log       *logrus.Logger
	opts      InterviewOptions
}

func NewInterviewService(d InterviewDeps, opts InterviewOptions) InterviewService {
	if d.Locker == nil {
		d.Locker = lock.NewLocal()
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if opts.MinResumeLength <= 0 {
		opts.MinResumeLength = DefaultMinResumeLength
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = extract.DefaultMaxBytes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &interviewService{
		repo:      d.Repo,
		extractor: d.Extractor,
		engine:    d.Engine,
		speech:    d.Speech,
		locker:    d.Locker,
		cache:     d.Cache,
		archive:   d.Archive,
		log:       d.Logger,
		opts:      opts,
	}
}

// Start extracts the résumé, generates the opening question and persists the
// new interview with that single turn. Nothing is persisted on failure.
func (s *interviewService) Start(ctx context.Context, ownerID, interviewType string, doc extract.Document) (*models.Interview, error) {
	const op = "InterviewService.Start"

	if ownerID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id is required", nil)
	}
	typ, ok := models.ParseInterviewType(interviewType)
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_type must be one of HR, Technical, Behavioral", nil)
	}
	if doc.Body == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume file is required", nil)
	}

	data, err := io.ReadAll(io.LimitReader(doc.Body, s.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read upload", err)
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file too large", nil)
	}
	doc.Body = bytes.NewReader(data)

	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.opts.MinResumeLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "failed to extract text from resume", utils.ErrExtractionFailed)
	}

	it := &models.Interview{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		ResumeText:    text,
		InterviewType: typ,
		Turns:         []models.Turn{},
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.engine.Open(ctx, it); err != nil {
		return nil, err
	}

	objectName, storedPath := s.archiveResume(ctx, it, doc, data)
	it.ResumeObject = storedPath

	if err := s.repo.Create(ctx, it); err != nil {
		s.discardArchive(ctx, objectName)
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}

	s.log.WithFields(logrus.Fields{
		"interview_id":   it.ID,
		"owner_id":       ownerID,
		"interview_type": typ,
		"resume_chars":   utf8.RuneCountInString(text),
	}).Info("interview started")
	return it, nil
}

// archiveResume stores the original document when an archive is configured.
// Failures are logged; the interview goes ahead without an archive path.
func (s *interviewService) archiveResume(ctx context.Context, it *models.Interview, doc extract.Document, data []byte) (objectName, storedPath string) {
	if s.archive == nil {
		return "", ""
	}
	kind, _ := extract.DetectKind(doc.Filename, doc.ContentType)
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName = "resumes/" + it.OwnerID + "/" + it.ID + kind.Ext()
	path, err := s.archive.Upload(ctx, objectName, contentType, bytes.NewReader(data))
	if err != nil {
		s.log.WithError(err).WithField("object", objectName).Warn("failed to archive resume")
		return "", ""
	}
	return objectName, path
}

// discardArchive removes an archived résumé whose interview was never created.
func (s *interviewService) discardArchive(ctx context.Context, objectName string) {
	if s.archive == nil || objectName == "" {
		return
	}
	if err := s.archive.Delete(ctx, objectName); err != nil {
		s.log.WithError(err).WithField("object", objectName).Warn("failed to remove orphaned resume")
	}
}

func (s *interviewService) SubmitText(ctx context.Context, interviewID, text string) (*models.Interview, models.Turn, error) {
	const op = "InterviewService.SubmitText"

	var reply models.Turn
	it, err := s.exchange(ctx, op, interviewID, func(it *models.Interview) error {
		var err error
		reply, err = s.engine.Advance(ctx, it, text)
		return err
	})
	if err != nil {
		return nil, models.Turn{}, err
	}
	return it, reply, nil
}

func (s *interviewService) SubmitAudio(ctx context.Context, interviewID string, audio io.Reader, filename string) (*models.Interview, string, models.Turn, error) {
	const op = "InterviewService.SubmitAudio"

	var (
		transcript string
		reply      models.Turn
	)
	it, err := s.exchange(ctx, op, interviewID, func(it *models.Interview) error {
		var err error
		transcript, reply, err = s.speech.AdvanceFromAudio(ctx, it, audio, filename)
		return err
	})
	if err != nil {
		return nil, "", models.Turn{}, err
	}
	return it, transcript, reply, nil
}

// exchange runs advance against a fresh copy of the interview while holding
// its lock, then persists exactly the turns advance appended.
func (s *interviewService) exchange(ctx context.Context, op, interviewID string, advance func(*models.Interview) error) (*models.Interview, error) {
	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}

	unlock, err := s.locker.Lock(ctx, interviewID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "interview is busy", err)
	}
	defer unlock()

	it, err := s.load(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}

	before := len(it.Turns)
	if err := advance(it); err != nil {
		return nil, err
	}

	if err := s.repo.AppendTurns(ctx, interviewID, it.Turns[before:]...); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save turns", err)
	}
	s.refreshCache(ctx, it)
	return it, nil
}

// refreshCache replaces the cached copy with it. Callers hold the interview
// lock, so a slower reader can never put an older transcript back.
func (s *interviewService) refreshCache(ctx context.Context, it *models.Interview) {
	key := cache.InterviewKey(it.ID)
	err := s.cache.SetJSON(ctx, key, it, s.opts.CacheTTL)
	if err == nil {
		return
	}
	s.log.WithError(err).WithField("key", key).Warn("interview cache write failed")
	if err := s.cache.Del(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to invalidate interview cache")
	}
}

func (s *interviewService) Get(ctx context.Context, interviewID string) (*models.Interview, error) {
	const op = "InterviewService.Get"

	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}

	key := cache.InterviewKey(interviewID)
	var cached models.Interview
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("interview cache read failed")
	}
	if hit {
		return &cached, nil
	}

	// fill the cache under the interview lock so it cannot race a submission
	unlock, err := s.locker.Lock(ctx, interviewID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "interview is busy", err)
	}
	defer unlock()

	it, err := s.load(ctx, op, interviewID)
	if err != nil {
		return nil, err
	}
	s.refreshCache(ctx, it)
	return it, nil
}

func (s *interviewService) load(ctx context.Context, op, interviewID string) (*models.Interview, error) {
	it, err := s.repo.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", utils.ErrSessionNotFound)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	return it, nil
}

func (s *interviewService) ListByOwner(ctx context.Context, ownerID string) ([]models.Interview, error) {
	return s.list(ctx, "InterviewService.ListByOwner", ownerID, 0)
}

func (s *interviewService) ListRecentByOwner(ctx context.Context, ownerID string, n int) ([]models.Interview, error) {
	if n <= 0 {
		n = s.opts.RecentLimit
	}
	return s.list(ctx, "InterviewService.ListRecentByOwner", ownerID, int64(n))
}

func (s *interviewService) list(ctx context.Context, op, ownerID string, limit int64) ([]models.Interview, error) {
	if ownerID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "owner_id is required", nil)
	}
	out, err := s.repo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	return out, nil
}
