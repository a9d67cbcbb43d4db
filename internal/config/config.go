package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docrank/internal/analysis"
	"github.com/dgallion1/docrank/internal/lexicon"
)

type Config struct {
	Port string

	// Auth
	DocrankAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL     time.Duration
	RunTimeout time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Ranking
	TopK                   int
	HeadingBoost           float64
	SentencesPerRefinement int
	SubSectionLimit        int
	ScoreWorkers           int
	MinSectionWords        int

	// Normalization
	StopWords []string // nil means the built-in list
	Stemming  bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocrankAPIKey: os.Getenv("DOCRANK_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		RunTimeout: envDuration("RUN_TIMEOUT", 5*time.Minute),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		TopK:                   envInt("TOP_K", 5),
		HeadingBoost:           envFloat("HEADING_BOOST", analysis.DefaultHeadingBoost),
		SentencesPerRefinement: envInt("SENTENCES_PER_REFINEMENT", analysis.DefaultSentencesPerRefinement),
		SubSectionLimit:        envInt("SUBSECTION_LIMIT", 0),
		ScoreWorkers:           envInt("SCORE_WORKERS", 4),
		MinSectionWords:        envInt("MIN_SECTION_WORDS", 0),

		StopWords: envList("STOP_WORDS"),
		Stemming:  envBool("STEMMING", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	if cfg.ScoreWorkers <= 0 {
		cfg.ScoreWorkers = 4
	}

	return cfg
}

// Validate checks the ranking parameters, which both the server and the CLI use.
func (c Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return err
	}
	if c.MinSectionWords < 0 {
		return fmt.Errorf("MIN_SECTION_WORDS must not be negative, got %d", c.MinSectionWords)
	}
	return nil
}

// ValidateServer is Validate plus the values only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.DocrankAPIKey == "" {
		return fmt.Errorf("DOCRANK_API_KEY is required")
	}
	return c.Validate()
}

// Options returns the analysis options described by the config.
func (c Config) Options() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.TopK = c.TopK
	opts.HeadingBoost = c.HeadingBoost
	opts.SentencesPerRefinement = c.SentencesPerRefinement
	opts.SubSectionLimit = c.SubSectionLimit
	opts.Workers = c.ScoreWorkers
	return opts
}

// Normalizer builds the shared text normalizer. A configured stop word list
// replaces the built-in one.
func (c Config) Normalizer() *lexicon.Normalizer {
	stop := lexicon.DefaultStopWords()
	if c.StopWords != nil {
		stop = lexicon.NewStopWords(c.StopWords)
	}
	return lexicon.NewNormalizer(stop, c.Stemming)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated value. Unset returns nil.
func envList(key string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
