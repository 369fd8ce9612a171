package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/navai/config"
	"github.com/yoockh/navai/internal/cache"
	"github.com/yoockh/navai/internal/dialogue"
	"github.com/yoockh/navai/internal/extract"
	"github.com/yoockh/navai/internal/lock"
	"github.com/yoockh/navai/internal/providers/llm"
	"github.com/yoockh/navai/internal/providers/ocr"
	"github.com/yoockh/navai/internal/providers/stt"
	"github.com/yoockh/navai/internal/repositories"
	mongorepo "github.com/yoockh/navai/internal/repositories/mongo"
	"github.com/yoockh/navai/internal/repositories/postgres"
	"github.com/yoockh/navai/internal/services"
	"github.com/yoockh/navai/internal/storage"
)

// container holds the wired service and everything that must be released
// on shutdown, in reverse order of acquisition.
type container struct {
	interviews services.InterviewService
	closers    []func()
}

func (c *container) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func (c *container) onClose(name string, log *logrus.Logger, fn func() error) {
	c.closers = append(c.closers, func() {
		if err := fn(); err != nil {
			log.WithError(err).WithField("component", name).Warn("close failed")
		}
	})
}

func build(ctx context.Context, cfg *config.Config, log *logrus.Logger) (_ *container, err error) {
	c := &container{}
	defer func() {
		if err != nil {
			c.close()
		}
	}()

	repo, err := buildStore(ctx, cfg, c, log)
	if err != nil {
		return nil, err
	}

	deps := services.InterviewDeps{Repo: repo, Logger: log}

	if cfg.RedisAddr != "" {
		rdb, err := config.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		c.onClose("redis", log, rdb.Close)
		deps.Locker = lock.NewRedis(rdb, cfg.LockTTL, log)
		deps.Cache = cache.NewRedisCache(rdb)
		log.Info("redis connected")
	}

	if cfg.GCSBucket != "" {
		up, err := storage.NewGCSUploader(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		c.onClose("gcs", log, up.Close)
		deps.Archive = up
	}

	var recognizer extract.Recognizer
	if cfg.OCR.Enabled {
		vv, err := ocr.NewVertexVision(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.OCR.Model, ocr.Options{
			DPI:      cfg.OCR.DPI,
			MaxPages: cfg.OCR.MaxPages,
			Language: cfg.OCR.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		c.onClose("ocr", log, vv.Close)
		recognizer = vv
	} else {
		log.Warn("ocr disabled, scanned resumes without a text layer will be rejected")
	}
	deps.Extractor = extract.New(extract.NativeText{}, recognizer, extract.Options{
		RecognitionThreshold: cfg.Interview.OCRThreshold,
		MaxBytes:             cfg.UploadMaxBytes,
		ExtractionTimeout:    cfg.Timeouts.Extraction,
		RecognitionTimeout:   cfg.Timeouts.Recognition,
	}, log)

	dialog, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	c.onClose("llm", log, dialog.Close)
	deps.Engine = dialogue.NewEngine(dialog, dialogue.Options{
		MaxInterviewerTurns: cfg.Interview.MaxInterviewerTurns,
		ContextWindow:       cfg.Interview.ContextWindow,
		ResumeExcerpt:       cfg.Interview.ResumeExcerpt,
		OpeningExcerpt:      cfg.Interview.OpeningExcerpt,
		Timeout:             cfg.Timeouts.Dialogue,
	}, log)

	transcriber, err := buildSTT(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("stt: %w", err)
	}
	c.onClose("stt", log, transcriber.Close)
	deps.Speech = dialogue.NewSpeechAdapter(deps.Engine, transcriber, dialogue.SpeechOptions{
		Language: cfg.STT.Language,
		MaxBytes: cfg.UploadMaxBytes,
		Timeout:  cfg.Timeouts.Transcription,
	}, log)

	c.interviews = services.NewInterviewService(deps, services.InterviewOptions{
		MinResumeLength: cfg.Interview.MinResumeLength,
		RecentLimit:     cfg.Interview.RecentLimit,
		MaxUploadBytes:  cfg.UploadMaxBytes,
		CacheTTL:        cfg.CacheTTL,
	})
	return c, nil
}

func buildStore(ctx context.Context, cfg *config.Config, c *container, log *logrus.Logger) (repositories.InterviewRepository, error) {
	switch cfg.StoreDriver {
	case "postgres":
		db, err := config.NewPostgres(cfg.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		c.onClose("postgres", log, sqlDB.Close)
		log.Info("postgres connected")
		return postgres.NewInterviewRepo(db), nil
	default:
		client, err := config.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		c.onClose("mongo", log, func() error { return client.Disconnect(context.Background()) })
		log.Info("mongo connected")
		return mongorepo.NewInterviewRepo(client.Database(cfg.MongoDB)), nil
	}
}

func buildLLM(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	if cfg.LLM.Provider == "vertex" {
		return llm.NewVertexGemini(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.LLM.Model)
	}
	return llm.NewOpenAIChat(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
}

func buildSTT(ctx context.Context, cfg *config.Config) (stt.Provider, error) {
	if cfg.STT.Provider == "google" {
		return stt.NewGoogleSpeech(ctx)
	}
	baseURL := cfg.STT.BaseURL
	if baseURL == "" {
		// same OpenAI-compatible host as the dialogue model
		baseURL = llm.DefaultOpenAIBaseURL
	}
	return stt.NewWhisper(cfg.STT.APIKey, baseURL, cfg.STT.Model)
}
