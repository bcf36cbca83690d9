// Package embedding provides text embedding via an OpenAI-compatible API or
// a local ONNX model, with LRU caching.
package embedding

import (
	"context"
	"fmt"

	"github.com/OlhaSokur/Test-task-2/internal/config"
)

// Embedder produces vector embeddings for text. Implementations return
// L2-normalized vectors so inner product equals cosine similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New builds the embedder named by cfg.Provider: "openai" (default),
// "local" (ONNX, requires CGO), or "mock" (deterministic, for tests and
// offline runs).
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "openai":
		client, err := NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			APIKeyEnv:  cfg.APIKeyEnv,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return NewCachedEmbedder(client, cfg.CacheSize), nil
	case "local":
		emb, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return emb, nil
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
