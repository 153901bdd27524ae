// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	DBPath    string
	LogLevel  string
	LogFormat string

	// EmbeddingBaseURL and GenerateBaseURL are the full endpoint URLs the
	// clients POST to, not server roots.
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingDimension int
	GenerateBaseURL    string
	GenerateModelName  string

	QdrantURL     string
	OpenSearchURL string

	ChunkMaxWords int
	ChunkOverlap  int
	BatchSize     int
}

// Load reads configuration from environment variables and returns a Config
// struct. It applies defaults for optional fields and validates required
// fields. If a .env file exists in the current directory or project root, it
// is loaded automatically; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up toward the project root to find a .env there.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:   getEnv("API_PORT", "9000"),
		DBPath:    getEnv("DB_PATH", "./data/tabular-rag.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:11434/api/embed"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "nomic-embed-text"),
		GenerateBaseURL:    getEnv("GENERATE_BASE_URL", "http://localhost:11434/api/generate"),
		GenerateModelName:  getEnv("GENERATE_MODEL_NAME", "llama3.1"),

		QdrantURL:     getEnv("QDRANT_URL", "http://localhost:6333"),
		OpenSearchURL: getEnv("OPENSEARCH_URL", "http://localhost:9200"),
	}

	// The dimension must match the embedding model's output size. Containers
	// created with one dimension cannot absorb vectors of another; if the
	// model changes, indexes must be recreated.
	dimStr := getEnv("EMBEDDING_DIMENSION", "")
	if dimStr == "" {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION is required")
	}
	dim, err := strconv.Atoi(dimStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be a valid integer: %w", err)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be greater than 0")
	}
	cfg.EmbeddingDimension = dim

	cfg.ChunkMaxWords, err = getEnvInt("CHUNK_MAX_WORDS", 140)
	if err != nil {
		return nil, err
	}
	cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 30)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap >= cfg.ChunkMaxWords {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_MAX_WORDS")
	}
	cfg.BatchSize, err = getEnvInt("BATCH_SIZE", 64)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be greater than 0")
	}

	// Create the data directory if it doesn't exist.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
