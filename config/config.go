package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the wikirag tool.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Generation GenerationConfig `yaml:"generation"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CorpusConfig holds corpus ingestion configuration.
type CorpusConfig struct {
	Label       string   `yaml:"label"`        // source label, e.g. "jawiki"
	Includes    []string `yaml:"includes"`     // glob patterns for directory corpora
	Excludes    []string `yaml:"excludes"`     // glob patterns to skip
	MaxArticles int      `yaml:"max_articles"` // 0 = unlimited
}

// ChunkingConfig holds window chunking parameters.
type ChunkingConfig struct {
	Size      int `yaml:"size"`
	Overlap   int `yaml:"overlap"`
	MinLength int `yaml:"min_length"`
	Lookback  int `yaml:"lookback"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "mock"
	Model     string `yaml:"model"`       // e.g. "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// RerankConfig holds cross-encoder reranking configuration.
type RerankConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"` // candidates fetched by vector search
	TopN int `yaml:"top_n"` // candidates kept in the final context
}

// GenerationConfig holds answer generation configuration.
type GenerationConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Model           string `yaml:"model"`
	APIKeyEnv       string `yaml:"api_key_env"`
	MaxTokens       int    `yaml:"max_tokens"`
	MaxContexts     int    `yaml:"max_contexts"`      // contexts included in the prompt
	MaxContextChars int    `yaml:"max_context_chars"` // per-context rune cap
}

// ArtifactsConfig holds persisted artifact locations.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Label:       "jawiki",
			Includes:    []string{"**/*.txt", "**/*.md"},
			Excludes:    []string{"**/.git/**", "**/node_modules/**"},
			MaxArticles: 0,
		},
		Chunking: ChunkingConfig{
			Size:      450,
			Overlap:   60,
			MinLength: 100,
			Lookback:  100,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 32,
		},
		Rerank: RerankConfig{
			Enabled:   false, // requires an API key; identity order otherwise
			Model:     "rerank-multilingual-v3.0",
			APIKeyEnv: "COHERE_API_KEY",
		},
		Retrieve: RetrieveConfig{
			TopK: 5,
			TopN: 3,
		},
		Generation: GenerationConfig{
			Enabled:         false,
			Model:           "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			MaxTokens:       200,
			MaxContexts:     2,
			MaxContextChars: 200,
		},
		Artifacts: ArtifactsConfig{
			Dir: "artifacts",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for wikirag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "wikirag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".wikirag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ChunksPath returns the path of the persisted chunk metadata file.
func (c *Config) ChunksPath() string {
	return filepath.Join(c.Artifacts.Dir, "chunks.jsonl")
}

// IndexPath returns the path of the persisted vector index blob.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Artifacts.Dir, "index.bin")
}

// CorpusDBPath returns the path of the ingested article database.
func (c *Config) CorpusDBPath() string {
	return filepath.Join(c.Artifacts.Dir, "corpus.db")
}

// EnsureArtifactsDir ensures the artifacts directory exists.
func (c *Config) EnsureArtifactsDir() error {
	return os.MkdirAll(c.Artifacts.Dir, 0755)
}
