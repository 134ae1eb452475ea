package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the shastra tool.
type Config struct {
	Weaviate   WeaviateConfig   `yaml:"weaviate"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WeaviateConfig holds vector index connection settings.
type WeaviateConfig struct {
	URL            string `yaml:"url"`
	Class          string `yaml:"class"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OllamaConfig holds the model server location.
type OllamaConfig struct {
	URL string `yaml:"url"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`     // e.g. "all-minilm", "nomic-embed-text"
	Dimension int    `yaml:"dimension"` // 0 = the model's known dimension
	BatchSize int    `yaml:"batch_size"`
	CachePath string `yaml:"cache_path"`
}

// GenerationConfig holds answer generation configuration.
type GenerationConfig struct {
	Model          string   `yaml:"model"` // "auto" probes the hardware at startup
	FallbackModels []string `yaml:"fallback_models"`
	Temperature    float64  `yaml:"temperature"`
	TopP           float64  `yaml:"top_p"`
	MaxTokens      int      `yaml:"max_tokens"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	DefaultSources      int     `yaml:"default_sources"`
	MaxSources          int     `yaml:"max_sources"`
	MinSimilarity       float64 `yaml:"min_similarity"`
	OverfetchMultiplier int     `yaml:"overfetch_multiplier"`
}

// IngestConfig holds ingestion configuration.
type IngestConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Workers int      `yaml:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Weaviate: WeaviateConfig{
			URL:            "http://localhost:8080",
			Class:          "SpiritualText",
			TimeoutSeconds: 30,
		},
		Ollama: OllamaConfig{
			URL: "http://localhost:11434",
		},
		Embedding: EmbeddingConfig{
			Model:     "all-minilm",
			Dimension: 0,
			BatchSize: 100,
			CachePath: filepath.Join(".shastra", "cache.db"),
		},
		Generation: GenerationConfig{
			Model:          "auto",
			FallbackModels: []string{"gemma3:12b", "gemma2:2b"},
			Temperature:    0.7,
			TopP:           0.9,
			MaxTokens:      4096,
			TimeoutSeconds: 180,
		},
		Retrieve: RetrieveConfig{
			DefaultSources:      5,
			MaxSources:          15,
			MinSimilarity:       0.3,
			OverfetchMultiplier: 3,
		},
		Ingest: IngestConfig{
			Include: []string{"**/*.jsonl"},
			Exclude: []string{},
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. WEAVIATE_URL and OLLAMA_URL environment variables override
// whatever the file says.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// shastra.yaml, then .shastra/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "shastra.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".shastra", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WEAVIATE_URL"); v != "" {
		cfg.Weaviate.URL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.Ollama.URL = v
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Retrieve.DefaultSources < 1 {
		return fmt.Errorf("retrieve.default_sources must be at least 1, got %d", c.Retrieve.DefaultSources)
	}
	if c.Retrieve.MaxSources < c.Retrieve.DefaultSources {
		return fmt.Errorf("retrieve.max_sources (%d) must not be below retrieve.default_sources (%d)",
			c.Retrieve.MaxSources, c.Retrieve.DefaultSources)
	}
	if c.Retrieve.MinSimilarity < 0 || c.Retrieve.MinSimilarity > 1 {
		return fmt.Errorf("retrieve.min_similarity must be within [0, 1], got %v", c.Retrieve.MinSimilarity)
	}
	if c.Retrieve.OverfetchMultiplier < 1 {
		return fmt.Errorf("retrieve.overfetch_multiplier must be at least 1, got %d", c.Retrieve.OverfetchMultiplier)
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest.workers must be at least 1, got %d", c.Ingest.Workers)
	}
	if c.Weaviate.Class == "" {
		return fmt.Errorf("weaviate.class must not be empty")
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureStateDir creates the directory holding the given state file.
// A bare filename needs no directory.
func EnsureStateDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
