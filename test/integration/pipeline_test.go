// Package integration provides end-to-end tests over real storage and
// indices.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/OlhaSokur/Test-task-2/internal/config"
	"github.com/OlhaSokur/Test-task-2/internal/embedding"
	"github.com/OlhaSokur/Test-task-2/internal/engine"
	"github.com/OlhaSokur/Test-task-2/internal/ingest"
	"github.com/OlhaSokur/Test-task-2/internal/keyword"
	"github.com/OlhaSokur/Test-task-2/internal/llm"
	"github.com/OlhaSokur/Test-task-2/internal/models"
	"github.com/OlhaSokur/Test-task-2/internal/retrieval"
	"github.com/OlhaSokur/Test-task-2/internal/storage"
	"github.com/OlhaSokur/Test-task-2/internal/vector"
)

// echoClient returns a canned answer so the pipeline runs without a real
// LLM endpoint.
type echoClient struct{}

func (echoClient) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return "The city was founded on the seven hills.", nil
}

func TestPipeline_ingestThenAsk(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:    filepath.Join(dir, "db.sqlite"),
			BleveIndexPath:  filepath.Join(dir, "bleve"),
			VectorIndexPath: filepath.Join(dir, "vectors.bin"),
		},
		Embedding: config.EmbeddingConfig{Dimensions: 16},
		Ingest:    config.IngestConfig{ChunkSize: 20, ChunkOverlap: 5},
		Retrieval: config.RetrievalConfig{TopK: 3, Threshold: 0.05, TopKCandidates: 20, KeywordEnabled: true},
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	vecIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}
	kwIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer kwIndex.Close()

	ing := ingest.NewIngestor(store, embedder, vecIndex, kwIndex, &cfg.Ingest)
	retriever := retrieval.NewRetriever(store, embedder, vecIndex, kwIndex, &cfg.Retrieval)
	eng := engine.NewEngine(retriever, echoClient{}, engine.NewTokenCounter(""), 4000, zap.NewNop())

	ctx := context.Background()

	source := filepath.Join(dir, "rome.txt")
	content := "Chapter 1. The founding\n\n" +
		"According to tradition the city was founded on the seven hills near the river.\n\n" +
		"Chapter 2. The republic\n\n" +
		"The senate ruled through elected consuls and the assemblies of the people."
	if err := os.WriteFile(source, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ing.IngestFile(ctx, source, nil); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	answer, err := eng.Ask(ctx, &models.AskQuery{Question: "seven hills founded city"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.HasPrefix(answer.Text, "The city was founded on the seven hills.") {
		t.Errorf("answer = %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "Sources:") {
		t.Errorf("citation block missing: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "rome.txt") {
		t.Errorf("source filename missing from citations: %q", answer.Text)
	}
	if len(answer.Sources) == 0 {
		t.Fatal("no source chunks returned")
	}

	// The vector index round-trips through its binary snapshot.
	if err := vecIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}
	if err := reloaded.Load(cfg.Storage.VectorIndexPath); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Size() != vecIndex.Size() {
		t.Errorf("reloaded size = %d, want %d", reloaded.Size(), vecIndex.Size())
	}

	// Deleting the document empties every store.
	docs, err := store.ListDocuments(ctx)
	if err != nil || len(docs) != 1 {
		t.Fatalf("ListDocuments = %v, %v", docs, err)
	}
	if err := ing.DeleteDocument(ctx, docs[0].ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if n, _ := store.CountChunks(ctx); n != 0 {
		t.Errorf("chunks after delete = %d", n)
	}
	if vecIndex.Size() != 0 {
		t.Errorf("vector index size after delete = %d", vecIndex.Size())
	}
}
