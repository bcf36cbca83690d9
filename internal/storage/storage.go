package storage

import (
	"context"
	"errors"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// ErrNotFound is returned when a requested document or chunk does not exist.
var ErrNotFound = errors.New("not found")

// Storage persists documents and their chunks.
type Storage interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	GetDocumentBySource(ctx context.Context, source string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	CreateChunk(ctx context.Context, chunk *models.Chunk) error
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error
	GetChunk(ctx context.Context, id string) (*models.Chunk, error)
	GetChunksByIDs(ctx context.Context, ids []string) ([]*models.Chunk, error)
	GetChunksByDocumentID(ctx context.Context, documentID string) ([]*models.Chunk, error)
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error

	CountDocuments(ctx context.Context) (int, error)
	CountChunks(ctx context.Context) (int, error)

	Close() error
}
