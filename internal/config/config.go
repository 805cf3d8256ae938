package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults taken from the reference llama.cpp setup.
const (
	DefaultModelPath = "llama-2-7b-32k-instruct.Q4_K_S.gguf"
	DefaultSampleURL = "https://www.youtube.com/watch?v=h5id4erwD4s"
	DefaultMaxTokens = 512
	DefaultChunkSize = 6000
	DefaultOverlap   = 200
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Model settings
	ModelPath        string `json:"model_path"`
	WhisperModelPath string `json:"whisper_model_path"`
	MaxSummaryTokens int    `json:"max_summary_tokens"`

	// Chunking settings (units: characters)
	MaxChunkSize int `json:"max_chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// Timeouts (seconds)
	FetchTimeout     int `json:"fetch_timeout_seconds"`
	InferenceTimeout int `json:"inference_timeout_seconds"`

	// Summarizer concurrency
	SummaryWorkers int `json:"summary_workers"`

	// Cache settings
	CacheEnabled  bool   `json:"cache_enabled"`
	CacheType     string `json:"cache_type"` // "file" or "memory"
	CacheDir      string `json:"cache_dir"`
	CacheDuration int    `json:"cache_duration"` // in hours

	// Audio artifact settings
	AudioDir  string `json:"audio_dir"`
	KeepAudio bool   `json:"keep_audio"`

	// Optional completion webhook
	NotifyWebhookURL string `json:"-"` // Don't expose in JSON
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		ModelPath:        getEnvOrDefault("MODEL_PATH", DefaultModelPath),
		WhisperModelPath: getEnvOrDefault("WHISPER_MODEL_PATH", "ggml-base.en.bin"),
		MaxSummaryTokens: getEnvOrDefaultInt("MAX_SUMMARY_TOKENS", DefaultMaxTokens),
		MaxChunkSize:     getEnvOrDefaultInt("MAX_CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:     getEnvOrDefaultInt("CHUNK_OVERLAP", DefaultOverlap),
		FetchTimeout:     getEnvOrDefaultInt("FETCH_TIMEOUT_SECONDS", 120),
		InferenceTimeout: getEnvOrDefaultInt("INFERENCE_TIMEOUT_SECONDS", 600),
		SummaryWorkers:   getEnvOrDefaultInt("SUMMARY_WORKERS", 2),
		CacheEnabled:     getEnvOrDefaultBool("CACHE_ENABLED", true),
		CacheType:        getEnvOrDefault("CACHE_TYPE", "file"),
		CacheDir:         getEnvOrDefault("CACHE_DIR", defaultCacheDir()),
		CacheDuration:    getEnvOrDefaultInt("CACHE_DURATION_HOURS", 168),
		AudioDir:         getEnvOrDefault("AUDIO_DIR", os.TempDir()),
		KeepAudio:        getEnvOrDefaultBool("KEEP_AUDIO", false),
		NotifyWebhookURL: getEnvOrDefault("NOTIFY_WEBHOOK_URL", ""),
	}

	return config, config.Validate()
}

// Validate checks if required configuration values are present and sane.
// Exported so callers that override fields (e.g. CLI flags) can re-check.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return &ConfigError{Field: "MODEL_PATH", Message: "model path is required"}
	}
	if _, err := os.Stat(c.ModelPath); err != nil {
		return &ConfigError{Field: "MODEL_PATH", Message: fmt.Sprintf("model not found at %s", c.ModelPath)}
	}
	if c.MaxChunkSize <= 0 {
		return &ConfigError{Field: "MAX_CHUNK_SIZE", Message: "must be positive"}
	}
	if c.ChunkOverlap < 0 {
		return &ConfigError{Field: "CHUNK_OVERLAP", Message: "must not be negative"}
	}
	if c.ChunkOverlap >= c.MaxChunkSize {
		return &ConfigError{Field: "CHUNK_OVERLAP", Message: "must be smaller than MAX_CHUNK_SIZE"}
	}
	if c.CacheType != "file" && c.CacheType != "memory" {
		return &ConfigError{Field: "CACHE_TYPE", Message: `must be "file" or "memory"`}
	}
	return nil
}

// defaultCacheDir places the cache under the user cache directory when available
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "youtube-summarizer")
	}
	return ".cache"
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvOrDefaultBool returns environment variable value as bool or default if not set
func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
