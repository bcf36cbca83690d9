// Package vector provides vector indexing and similarity search for chunk
// embeddings.
package vector

import "context"

// Index stores chunk embeddings and answers top-k similarity queries.
// IDs are chunk IDs; vectors are L2-normalized so inner product equals
// cosine similarity.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single similarity hit.
type Result struct {
	ID    string
	Score float64 // cosine similarity for normalized vectors
}
