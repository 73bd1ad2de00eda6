package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DataConfig locates the snapshots the pipeline reads and writes.
type DataConfig struct {
	CatalogRaw        string `yaml:"catalog_raw" env:"CATALOG_RAW_PATH"`
	InstructorsRaw    string `yaml:"instructors_raw" env:"INSTRUCTORS_RAW_PATH"`
	Courses           string `yaml:"courses" env:"COURSES_PATH"`
	InstructorRecords string `yaml:"instructor_records" env:"INSTRUCTOR_RECORDS_PATH"`
	Bolt              string `yaml:"bolt" env:"BOLT_PATH"`
}

// CatalogConfig scopes which courses and instructors are kept.
type CatalogConfig struct {
	Subject           string `yaml:"subject" env:"CATALOG_SUBJECT"`
	GraduateThreshold int    `yaml:"graduate_threshold" env:"CATALOG_GRADUATE_THRESHOLD"`
	Institution       string `yaml:"institution" env:"CATALOG_INSTITUTION"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" env:"EMBEDDINGS_API_BASE"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model" env:"EMBEDDINGS_MODEL"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string               `yaml:"type" env:"EMBEDDER_TYPE"`
	OpenAI OpenAIEmbedderConfig `yaml:"openai"`
}

// ChunkerConfig configures how free text added through the API is split.
type ChunkerConfig struct {
	SentencesPerChunk int `yaml:"sentences_per_chunk"`
	OverlapSentences  int `yaml:"overlap_sentences"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string       `yaml:"type" env:"VECTOR_STORE_TYPE"`
	Qdrant QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" env:"QDRANT_URL"`
	APIKey      string `yaml:"api_key" env:"QDRANT_API_KEY"`
	Collection  string `yaml:"collection" env:"QDRANT_COLLECTION"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SummarizerConfig selects and configures the description summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// RetrievalConfig tunes the question answering path.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" env:"RAG_TOP_K"`
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
// Completion is disabled unless both BaseURL and Model are set.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url" env:"LITELLM_API_BASE"`
	APIKey      string `yaml:"api_key" env:"LITELLM_API_KEY"`
	Model       string `yaml:"model" env:"LITELLM_MODEL_NAME"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// Enabled reports whether enough is configured to call the endpoint.
func (c LLMConfig) Enabled() bool { return c.BaseURL != "" && c.Model != "" }

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host                string `yaml:"host" env:"HOST"`
	Port                int    `yaml:"port" env:"PORT"`
	ShutdownTimeoutSecs int    `yaml:"shutdown_timeout_secs"`
	WatchSnapshot       bool   `yaml:"watch_snapshot" env:"WATCH_SNAPSHOT"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	LLM         LLMConfig         `yaml:"llm"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Load reads a config from a specified path. A missing file yields defaults.
// Environment variables named by env tags override file values either way.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	if err := processStructFields(cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/courserag/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "courserag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Data: DataConfig{
			CatalogRaw:        filepath.Join("data", "catalog_raw.json"),
			InstructorsRaw:    filepath.Join("data", "instructors_raw.json"),
			Courses:           filepath.Join("data", "courses_with_professors.json"),
			InstructorRecords: filepath.Join("data", "instructors_llm.json"),
		},
		Catalog: CatalogConfig{
			Subject:           "CS",
			GraduateThreshold: 600,
			Institution:       "San Diego State University",
		},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{SentencesPerChunk: 5, OverlapSentences: 1},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 3},
		Retrieval:   RetrievalConfig{TopK: 5},
		LLM:         LLMConfig{TimeoutSecs: 60},
		Server:      ServerConfig{Host: "0.0.0.0", Port: 8000, ShutdownTimeoutSecs: 10, WatchSnapshot: true},
		Logging:     LoggingConfig{Level: "info"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Catalog.Subject == "" {
		cfg.Catalog.Subject = "CS"
	}
	if cfg.Catalog.GraduateThreshold <= 0 {
		cfg.Catalog.GraduateThreshold = 600
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = 3
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeoutSecs <= 0 {
		cfg.Server.ShutdownTimeoutSecs = 10
	}
	if cfg.LLM.TimeoutSecs <= 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.Embedder.Type == "openai" {
		o := &cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		q := &cfg.VectorStore.Qdrant
		if q.URL == "" {
			q.URL = "http://localhost:6333"
		}
		if q.Collection == "" {
			q.Collection = "courses"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
}
