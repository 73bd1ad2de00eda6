// Package embedding selects the configured text embedder.
package embedding

import (
	"fmt"
	"os"
	"time"

	"courserag/internal/config"
	"courserag/internal/domain"
	"courserag/internal/embedding/openai"
	"courserag/internal/embedding/tfidf"
)

// New builds the embedder named by cfg.Type ("tfidf" or "openai").
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "", "tfidf":
		return tfidf.NewEmbedder(), nil
	case "openai":
		return openai.NewClient(openai.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  os.Getenv(cfg.OpenAI.APIKeyEnv),
			Model:   cfg.OpenAI.Model,
			Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Type)
	}
}
