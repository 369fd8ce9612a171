package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is read from the environment, optionally seeded from .env by
// godotenv before Load is called.
type Config struct {
	Port        string
	LogLevel    string
	StoreDriver string // mongo|postgres

	MongoURI    string
	MongoDB     string
	PostgresURI string
	RedisAddr   string // empty disables Redis locking and caching

	GCSBucket    string // empty disables résumé archiving
	GCPProjectID string
	GCPLocation  string

	LLM       LLMConfig
	STT       STTConfig
	OCR       OCRConfig
	Interview InterviewConfig
	Timeouts  TimeoutConfig
	JWT       JWTConfig

	UploadMaxBytes int64
	LockTTL        time.Duration
	CacheTTL       time.Duration
}

type LLMConfig struct {
	Provider string // openai|vertex
	BaseURL  string
	APIKey   string
	Model    string
}

type STTConfig struct {
	Provider string // openai|google
	BaseURL  string
	APIKey   string
	Model    string
	Language string // BCP-47
}

type OCRConfig struct {
	Enabled  bool
	Model    string
	DPI      float64
	MaxPages int
	Language string
}

type InterviewConfig struct {
	MaxInterviewerTurns int
	ContextWindow       int
	ResumeExcerpt       int
	OpeningExcerpt      int
	OCRThreshold        int
	MinResumeLength     int
	RecentLimit         int
}

type TimeoutConfig struct {
	Extraction    time.Duration
	Recognition   time.Duration
	Transcription time.Duration
	Dialogue      time.Duration
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("MONGO_DB", "navai")
	v.SetDefault("GCP_LOCATION", "us-central1")

	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("STT_PROVIDER", "openai")
	v.SetDefault("STT_LANGUAGE", "en-US")

	v.SetDefault("OCR_MODEL", "gemini-1.5-flash")
	v.SetDefault("OCR_DPI", 200)
	v.SetDefault("OCR_MAX_PAGES", 5)
	v.SetDefault("OCR_LANGUAGE", "English")

	v.SetDefault("INTERVIEW_MAX_INTERVIEWER_TURNS", 10)
	v.SetDefault("INTERVIEW_CONTEXT_WINDOW", 10)
	v.SetDefault("INTERVIEW_RESUME_EXCERPT", 1000)
	v.SetDefault("INTERVIEW_OPENING_EXCERPT", 3000)
	v.SetDefault("INTERVIEW_OCR_THRESHOLD", 100)
	v.SetDefault("INTERVIEW_MIN_RESUME_LENGTH", 50)
	v.SetDefault("INTERVIEW_RECENT_LIMIT", 5)

	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("TIMEOUT_EXTRACTION", "30s")
	v.SetDefault("TIMEOUT_RECOGNITION", "60s")
	v.SetDefault("TIMEOUT_TRANSCRIPTION", "60s")
	v.SetDefault("TIMEOUT_DIALOGUE", "30s")
	v.SetDefault("LOCK_TTL", "2m")
	v.SetDefault("CACHE_TTL", "10m")
}

// Load reads the process environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	redisAddr := v.GetString("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = v.GetString("REDIS_URI")
	}
	if redisAddr == "" {
		redisAddr = v.GetString("REDIS_URL")
	}

	llmKey := v.GetString("LLM_API_KEY")
	if llmKey == "" {
		// Groq-only deployments set GROQ_API_KEY
		llmKey = v.GetString("GROQ_API_KEY")
	}
	sttKey := v.GetString("STT_API_KEY")
	if sttKey == "" {
		sttKey = llmKey
	}

	// OCR follows the GCP project unless OCR_ENABLED says otherwise
	ocrEnabled := v.GetString("GCP_PROJECT_ID") != ""
	if v.IsSet("OCR_ENABLED") {
		ocrEnabled = v.GetBool("OCR_ENABLED")
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		StoreDriver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),

		MongoURI:    v.GetString("MONGO_URI"),
		MongoDB:     v.GetString("MONGO_DB"),
		PostgresURI: v.GetString("POSTGRES_URI"),
		RedisAddr:   redisAddr,

		GCSBucket:    v.GetString("GCS_BUCKET"),
		GCPProjectID: v.GetString("GCP_PROJECT_ID"),
		GCPLocation:  v.GetString("GCP_LOCATION"),

		LLM: LLMConfig{
			Provider: strings.ToLower(v.GetString("LLM_PROVIDER")),
			BaseURL:  v.GetString("LLM_BASE_URL"),
			APIKey:   llmKey,
			Model:    v.GetString("LLM_MODEL"),
		},
		STT: STTConfig{
			Provider: strings.ToLower(v.GetString("STT_PROVIDER")),
			BaseURL:  firstNonEmpty(v.GetString("STT_BASE_URL"), v.GetString("LLM_BASE_URL")),
			APIKey:   sttKey,
			Model:    v.GetString("STT_MODEL"),
			Language: v.GetString("STT_LANGUAGE"),
		},
		OCR: OCRConfig{
			Enabled:  ocrEnabled,
			Model:    v.GetString("OCR_MODEL"),
			DPI:      v.GetFloat64("OCR_DPI"),
			MaxPages: v.GetInt("OCR_MAX_PAGES"),
			Language: v.GetString("OCR_LANGUAGE"),
		},
		Interview: InterviewConfig{
			MaxInterviewerTurns: v.GetInt("INTERVIEW_MAX_INTERVIEWER_TURNS"),
			ContextWindow:       v.GetInt("INTERVIEW_CONTEXT_WINDOW"),
			ResumeExcerpt:       v.GetInt("INTERVIEW_RESUME_EXCERPT"),
			OpeningExcerpt:      v.GetInt("INTERVIEW_OPENING_EXCERPT"),
			OCRThreshold:        v.GetInt("INTERVIEW_OCR_THRESHOLD"),
			MinResumeLength:     v.GetInt("INTERVIEW_MIN_RESUME_LENGTH"),
			RecentLimit:         v.GetInt("INTERVIEW_RECENT_LIMIT"),
		},
		Timeouts: TimeoutConfig{
			Extraction:    v.GetDuration("TIMEOUT_EXTRACTION"),
			Recognition:   v.GetDuration("TIMEOUT_RECOGNITION"),
			Transcription: v.GetDuration("TIMEOUT_TRANSCRIPTION"),
			Dialogue:      v.GetDuration("TIMEOUT_DIALOGUE"),
		},
		JWT: JWTConfig{
			Secret:   v.GetString("SUPABASE_JWT_SECRET"),
			Issuer:   v.GetString("SUPABASE_JWT_ISSUER"),
			Audience: v.GetString("SUPABASE_JWT_AUDIENCE"),
		},

		UploadMaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		LockTTL:        v.GetDuration("LOCK_TTL"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the provider selections and the settings each one needs.
// Connection strings are checked by the constructors that use them.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "mongo", "postgres":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be mongo or postgres, got %q", c.StoreDriver))
	}

	switch c.LLM.Provider {
	case "openai", "vertex":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be openai or vertex, got %q", c.LLM.Provider))
	}
	switch c.STT.Provider {
	case "openai", "google":
	default:
		errs = append(errs, fmt.Errorf("STT_PROVIDER must be openai or google, got %q", c.STT.Provider))
	}
	if c.LLM.Provider == "vertex" && c.GCPProjectID == "" {
		errs = append(errs, errors.New("GCP_PROJECT_ID is required when LLM_PROVIDER=vertex"))
	}
	if c.OCR.Enabled && c.GCPProjectID == "" {
		errs = append(errs, errors.New("GCP_PROJECT_ID is required when OCR_ENABLED=true"))
	}

	if c.Interview.MaxInterviewerTurns <= 0 || c.Interview.ContextWindow <= 0 {
		errs = append(errs, errors.New("INTERVIEW_MAX_INTERVIEWER_TURNS and INTERVIEW_CONTEXT_WINDOW must be positive"))
	}
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
