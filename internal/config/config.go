package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Index backends selectable with INDEX_BACKEND.
const (
	BackendLocal    = "local"    // SQLite records and full-text, Qdrant vectors
	BackendPostgres = "postgres" // pgvector and tsvector search in Postgres
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  string
	LogFormat string

	DBPath       string
	IndexBackend string
	PostgresDSN  string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	QdrantVectorSize int

	EmbeddingBaseURL    string
	EmbeddingAPIKey     string
	EmbeddingModelName  string
	EmbeddingTimeout    time.Duration
	EmbeddingMaxRetries int
	EmbeddingCacheSize  int

	APIPort            string
	CORSAllowedOrigins []string

	Tuning Tuning
}

// Tuning holds the chunking and retrieval knobs. Defaults can be overridden
// by a YAML file named in FINRAG_TUNING_FILE.
type Tuning struct {
	MaxChunkSize        int           `yaml:"max_chunk_size"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	MaxPerPage          int           `yaml:"max_per_page"`
	DefaultTopK         int           `yaml:"default_top_k"`
	EmbedBatchSize      int           `yaml:"embed_batch_size"`
	BreakerMaxFailures  uint32        `yaml:"breaker_max_failures"`
	BreakerOpenTimeout  time.Duration `yaml:"breaker_open_timeout"`
}

// DefaultTuning returns the built-in tuning values.
func DefaultTuning() Tuning {
	return Tuning{
		MaxChunkSize:        2048,
		SimilarityThreshold: 0.75,
		MaxPerPage:          2,
		DefaultTopK:         10,
		EmbedBatchSize:      32,
		BreakerMaxFailures:  5,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	// Walk up a few directories so commands run from a subdirectory still find it.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBPath:             getEnv("DB_PATH", "./data/finrag.db"),
		IndexBackend:       strings.ToLower(getEnv("INDEX_BACKEND", BackendLocal)),
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:       getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "annual_reports"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		APIPort:            getEnv("API_PORT", "9000"),
		Tuning:             DefaultTuning(),
	}

	// QDRANT_VECTOR_SIZE must match the output size of the embeddings model.
	// Both backends size their vector column from it.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	cfg.EmbeddingTimeout, err = time.ParseDuration(getEnv("EMBEDDING_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_TIMEOUT must be a duration such as 30s: %w", err)
	}
	if cfg.EmbeddingMaxRetries, err = getEnvInt("EMBEDDING_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.EmbeddingCacheSize, err = getEnvInt("EMBEDDING_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if path := getEnv("FINRAG_TUNING_FILE", ""); path != "" {
		if err := cfg.Tuning.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Create the data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.IndexBackend {
	case BackendLocal:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when INDEX_BACKEND is %s", BackendPostgres)
		}
	default:
		return fmt.Errorf("INDEX_BACKEND must be %s or %s, got %q", BackendLocal, BackendPostgres, c.IndexBackend)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.EmbeddingMaxRetries < 1 {
		return fmt.Errorf("EMBEDDING_MAX_RETRIES must be at least 1")
	}
	if c.EmbeddingCacheSize < 0 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must not be negative")
	}

	return c.Tuning.validate()
}

// loadFile overlays the values present in a YAML file onto t.
func (t *Tuning) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return fmt.Errorf("failed to parse tuning file %s: %w", path, err)
	}
	return nil
}

func (t Tuning) validate() error {
	if t.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be greater than 0")
	}
	if t.SimilarityThreshold <= 0 || t.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0, 1]")
	}
	if t.MaxPerPage <= 0 {
		return fmt.Errorf("max_per_page must be greater than 0")
	}
	if t.DefaultTopK <= 0 {
		return fmt.Errorf("default_top_k must be greater than 0")
	}
	if t.EmbedBatchSize <= 0 {
		return fmt.Errorf("embed_batch_size must be greater than 0")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment variable, returning defaultValue
// when it is unset.
func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
