package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/OlhaSokur/Test-task-2/internal/config"
	"github.com/OlhaSokur/Test-task-2/internal/extract"
	"github.com/OlhaSokur/Test-task-2/internal/fileid"
	"github.com/OlhaSokur/Test-task-2/internal/keyword"
	"github.com/OlhaSokur/Test-task-2/internal/models"
	"github.com/OlhaSokur/Test-task-2/internal/storage"
	"github.com/OlhaSokur/Test-task-2/internal/vector"
)

// Ingestor drives the full pipeline for one file: extract, normalize and
// tag, chunk, embed, then write to storage and both indexes.
type Ingestor struct {
	storage      storage.Storage
	embedder     Embedder
	vectorIndex  vector.Index
	keywordIndex keyword.Index
	extractor    *extract.Extractor
	chunker      *Chunker
	logger       *zap.Logger
}

// Embedder is the subset of the embedding client the ingestor needs.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets a logger for debug events (file ingested, document deleted).
func WithLogger(l *zap.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(
	store storage.Storage,
	embedder Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.Index,
	cfg *config.IngestConfig,
	opts ...Option,
) *Ingestor {
	ing := &Ingestor{
		storage:      store,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		extractor:    extract.NewExtractor(),
		chunker:      NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestFile extracts, tags, chunks, embeds, and indexes one file. The
// document ID is derived from the absolute path, so re-ingesting the same
// file replaces its previous document. Files whose mtime and size match the
// stored document are skipped.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, allowedExts []string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}

	docID := fileid.DocID(absPath)
	if ing.unchanged(ctx, docID, absPath, info) {
		if ing.logger != nil {
			ing.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		}
		return nil
	}

	fragments, err := ing.extractor.Extract(absPath)
	if err != nil {
		return fmt.Errorf("extract %s: %w", absPath, err)
	}
	tagged := Process(fragments, absPath)
	if len(tagged) == 0 {
		return fmt.Errorf("no usable text in %s", absPath)
	}

	// Replace any previous version of this document before writing the new one.
	_ = ing.DeleteDocument(ctx, docID)

	doc := &models.Document{
		ID:          docID,
		Title:       filepath.Base(absPath),
		Source:      absPath,
		SourceMtime: info.ModTime().UnixNano(),
		SourceSize:  info.Size(),
	}
	if err := ing.storage.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	chunks := ing.chunker.Split(docID, tagged)
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Content
	}
	embeddings, err := ing.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := ing.storage.BatchCreateChunks(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := ing.vectorIndex.Add(ctx, chunkIDs, embeddings); err != nil {
		return fmt.Errorf("index vectors: %w", err)
	}
	for _, ch := range chunks {
		if err := ing.keywordIndex.Index(ctx, ch); err != nil {
			return fmt.Errorf("index keywords: %w", err)
		}
	}

	if ing.logger != nil {
		ing.logger.Debug("file ingested",
			zap.String("path", absPath),
			zap.String("doc_id", docID),
			zap.Int("chunks", len(chunks)))
	}
	return nil
}

// unchanged reports whether the stored document for docID matches the file's
// current mtime and size.
func (ing *Ingestor) unchanged(ctx context.Context, docID, absPath string, info os.FileInfo) bool {
	doc, err := ing.storage.GetDocument(ctx, docID)
	if err != nil {
		return false
	}
	return doc.Source == absPath &&
		doc.SourceMtime == info.ModTime().UnixNano() &&
		doc.SourceSize == info.Size()
}

// IngestDirectory walks dir recursively and ingests each regular file whose
// extension is in allowedExts (all files when the list is empty). Returns
// the number of files ingested and the first error encountered.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		if ingErr := ing.IngestFile(ctx, path, allowedExts); ingErr != nil {
			return ingErr
		}
		n++
		return nil
	})
	return n, err
}

// DeleteDocument removes a document and its chunks from storage and both
// indexes.
func (ing *Ingestor) DeleteDocument(ctx context.Context, id string) error {
	chunks, err := ing.storage.GetChunksByDocumentID(ctx, id)
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, ch := range chunks {
		chunkIDs[i] = ch.ID
	}
	if err := ing.vectorIndex.Remove(ctx, chunkIDs); err != nil {
		return fmt.Errorf("delete from vector index: %w", err)
	}
	for _, chunkID := range chunkIDs {
		if err := ing.keywordIndex.Delete(ctx, chunkID); err != nil {
			return fmt.Errorf("delete from keyword index: %w", err)
		}
	}
	if err := ing.storage.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := ing.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if ing.logger != nil {
		ing.logger.Debug("document deleted", zap.String("id", id))
	}
	return nil
}

// DeleteByPath removes the document previously ingested from path, if any.
func (ing *Ingestor) DeleteByPath(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	return ing.DeleteDocument(ctx, fileid.DocID(absPath))
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
