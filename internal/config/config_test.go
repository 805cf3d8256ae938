package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeModelFile creates a placeholder model so MODEL_PATH validation passes.
func writeModelFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.gguf")
	if err := os.WriteFile(path, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("Failed to write model file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	modelPath := writeModelFile(t)
	t.Setenv("MODEL_PATH", modelPath)
	t.Setenv("MAX_CHUNK_SIZE", "4000")
	t.Setenv("CACHE_TYPE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ModelPath != modelPath {
		t.Errorf("Expected ModelPath to be '%s', got '%s'", modelPath, cfg.ModelPath)
	}

	if cfg.MaxChunkSize != 4000 {
		t.Errorf("Expected MaxChunkSize to be 4000, got %d", cfg.MaxChunkSize)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.ChunkOverlap != DefaultOverlap {
		t.Errorf("Expected ChunkOverlap to be %d, got %d", DefaultOverlap, cfg.ChunkOverlap)
	}

	if !cfg.CacheEnabled {
		t.Error("Expected CacheEnabled to default to true")
	}
}

func TestLoadConfigMissingModel(t *testing.T) {
	t.Setenv("MODEL_PATH", filepath.Join(t.TempDir(), "does-not-exist.gguf"))

	_, err := Load()
	if err == nil {
		t.Fatal("Expected validation error for missing model file")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %T", err)
	}
	if cfgErr.Field != "MODEL_PATH" {
		t.Errorf("Expected field MODEL_PATH, got '%s'", cfgErr.Field)
	}
}

func TestConfigValidation(t *testing.T) {
	modelPath := writeModelFile(t)

	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"empty model path", func(c *Config) { c.ModelPath = "" }, "MODEL_PATH"},
		{"zero chunk size", func(c *Config) { c.MaxChunkSize = 0 }, "MAX_CHUNK_SIZE"},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, "CHUNK_OVERLAP"},
		{"overlap equals chunk size", func(c *Config) { c.ChunkOverlap = c.MaxChunkSize }, "CHUNK_OVERLAP"},
		{"unknown cache type", func(c *Config) { c.CacheType = "redis" }, "CACHE_TYPE"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := &Config{
				ModelPath:    modelPath,
				MaxChunkSize: DefaultChunkSize,
				ChunkOverlap: DefaultOverlap,
				CacheType:    "file",
			}
			test.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %T", err)
			}
			if cfgErr.Field != test.field {
				t.Errorf("Expected field '%s', got '%s'", test.field, cfgErr.Field)
			}
		})
	}
}

func TestGetEnvOrDefaultInt(t *testing.T) {
	t.Setenv("TEST_INT_VALUE", "42")
	if v := getEnvOrDefaultInt("TEST_INT_VALUE", 7); v != 42 {
		t.Errorf("Expected 42, got %d", v)
	}

	t.Setenv("TEST_INT_VALUE", "not-a-number")
	if v := getEnvOrDefaultInt("TEST_INT_VALUE", 7); v != 7 {
		t.Errorf("Expected default 7 for invalid value, got %d", v)
	}

	if v := getEnvOrDefaultInt("TEST_INT_UNSET", 7); v != 7 {
		t.Errorf("Expected default 7 for unset value, got %d", v)
	}
}
