package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DataDir holds the tracking file, embedding cache and index database.
	DataDir string `envconfig:"DATA_DIR"`

	Provider     string `envconfig:"EMBEDDING_PROVIDER"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`
	HotCacheSize int `envconfig:"HOT_CACHE_SIZE" default:"1000"`
	ScanWorkers  int `envconfig:"SCAN_WORKERS" default:"4"`

	// BatchSize caps the number of texts per provider embedding call.
	BatchSize int `envconfig:"BATCH_SIZE" default:"100"`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CORPUSRAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".corpusrag")
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// TrackingFile is the path of the document tracking JSON file.
func (c *Config) TrackingFile() string {
	return filepath.Join(c.DataDir, "document_tracking.json")
}

// CacheFile is the path of the embedding cache JSON file.
func (c *Config) CacheFile() string {
	return filepath.Join(c.DataDir, "embeddings_cache.json")
}

// DBPath is the path of the SQLite index database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "index.db")
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasGemini() bool {
	return c.GeminiAPIKey != ""
}
