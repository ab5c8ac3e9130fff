package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Ollama connection
	OllamaURL  string
	EmbedModel string
	ChatModel  string

	// Completion
	Temperature float64
	MaxTokens   int

	// Retrieval. RRFK and RelevanceFloor are deliberately configuration, not
	// constants: both are empirically tuned.
	TopK           int
	RRFK           int
	RelevanceFloor float64

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int
	MinChunkTokens      int

	// Embedding batches
	EmbedBatchSize int
	EmbedRateLimit float64 // batches per second

	// Provider retry
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Follow-up questions
	FollowUpCount int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		OllamaURL:  envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel: envOr("EMBED_MODEL", "nomic-embed-text"),
		ChatModel:  envOr("CHAT_MODEL", "llama3.1"),

		Temperature: envFloat("TEMPERATURE", 0.1),
		MaxTokens:   envInt("MAX_TOKENS", 2048),

		TopK:           envInt("TOP_K", 6),
		RRFK:           envInt("RRF_K", 60),
		RelevanceFloor: envFloat("RELEVANCE_FLOOR", 0.02),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 1000),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 100),
		MinChunkTokens:      envInt("MIN_CHUNK_TOKENS", 20),

		EmbedBatchSize: envInt("EMBED_BATCH_SIZE", 10),
		EmbedRateLimit: envFloat("EMBED_RATE_LIMIT", 2.0),

		MaxRetries:     envInt("MAX_RETRIES", 3),
		RetryBaseDelay: envDuration("RETRY_BASE_DELAY", 1*time.Second),
		RetryMaxDelay:  envDuration("RETRY_MAX_DELAY", 30*time.Second),

		FollowUpCount: envInt("FOLLOW_UP_COUNT", 3),
	}

	if cfg.TopK <= 0 {
		cfg.TopK = 6
	}
	if cfg.RRFK <= 0 {
		cfg.RRFK = 60
	}
	if cfg.RelevanceFloor < 0 {
		cfg.RelevanceFloor = 0.02
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1000
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = 100
	}
	if cfg.MinChunkTokens <= 0 {
		cfg.MinChunkTokens = 20
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 10
	}
	if cfg.EmbedRateLimit <= 0 {
		cfg.EmbedRateLimit = 2.0
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 1 * time.Second
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 30 * time.Second
	}
	if cfg.FollowUpCount <= 0 {
		cfg.FollowUpCount = 3
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OllamaURL == "" {
		return fmt.Errorf("OLLAMA_URL is required")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("TEMPERATURE must be between 0 and 1")
	}
	if c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP must be smaller than DEFAULT_CHUNK_SIZE")
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
