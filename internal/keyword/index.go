// Package keyword provides BM25 chunk search as the lexical leg of hybrid
// retrieval.
package keyword

import (
	"context"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// Index defines keyword search over chunks.
type Index interface {
	Index(ctx context.Context, chunk *models.Chunk) error
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	Delete(ctx context.Context, chunkID string) error
	Close() error
	DocCount() (uint64, error)
}

// Result is a single keyword search hit; ID is the chunk ID.
type Result struct {
	ID    string
	Score float64
}
