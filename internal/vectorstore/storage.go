// Package vectorstore selects the configured vector store.
package vectorstore

import (
	"fmt"
	"time"

	"courserag/internal/config"
	"courserag/internal/domain"
	"courserag/internal/vectorstore/memory"
	"courserag/internal/vectorstore/qdrant"
)

// New builds the store named by cfg.Type ("memory" or "qdrant").
func New(cfg config.VectorStoreConfig) (domain.VectorStore, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant.URL == "" || cfg.Qdrant.Collection == "" {
			return nil, fmt.Errorf("qdrant store needs url and collection")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}
}
