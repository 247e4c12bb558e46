package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey       string
	AuthDisabled bool

	// Token-classification service
	NERURL     string
	NERTimeout time.Duration

	// Decoding
	AnnealTags bool

	// Example notes
	ExamplesPath  string
	ExamplesLimit int

	// Prediction cache
	CacheSize int
	CacheTTL  time.Duration
	RedisURL  string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentPredict int

	// Upload limits
	MaxUploadBytes int64

	// Chunking
	ChunkMaxTokens int
	TokenizerPath  string

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:       os.Getenv("NOTESCRIBE_API_KEY"),
		AuthDisabled: envBool("AUTH_DISABLED", false),

		NERURL:     envOr("NER_API_URL", "http://localhost:8000"),
		NERTimeout: envDuration("NER_TIMEOUT", 60*time.Second),

		AnnealTags: envBool("ANNEAL_TAGS", false),

		ExamplesPath:  envOr("EXAMPLES_PATH", "data/augmented_notes_30K_sample.jsonl"),
		ExamplesLimit: envInt("EXAMPLES_LIMIT", 10),

		CacheSize: envInt("CACHE_SIZE", 512),
		CacheTTL:  envDuration("CACHE_TTL", 30*time.Minute),
		RedisURL:  os.Getenv("REDIS_URL"),

		WorkerCount:          envInt("WORKER_COUNT", 2),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 50),
		MaxConcurrentPredict: envInt("MAX_CONCURRENT_PREDICT", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		ChunkMaxTokens: envInt("CHUNK_MAX_TOKENS", 400),
		TokenizerPath:  os.Getenv("TOKENIZER_PATH"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.NERTimeout <= 0 {
		cfg.NERTimeout = 60 * time.Second
	}
	if cfg.ExamplesLimit <= 0 {
		cfg.ExamplesLimit = 10
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentPredict <= 0 {
		cfg.MaxConcurrentPredict = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.ChunkMaxTokens <= 0 {
		cfg.ChunkMaxTokens = 400
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" && !c.AuthDisabled {
		return fmt.Errorf("NOTESCRIBE_API_KEY is required (or set AUTH_DISABLED=true)")
	}
	u, err := url.Parse(c.NERURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("NER_API_URL must be an absolute http(s) URL, got %q", c.NERURL)
	}
	return nil
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
