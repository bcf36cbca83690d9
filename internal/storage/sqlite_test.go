package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:          "doc1",
		Title:       "history.pdf",
		Source:      "/data/history.pdf",
		SourceMtime: 1700000000,
		SourceSize:  4096,
	}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	got, err := s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "history.pdf" || got.SourceMtime != 1700000000 || got.SourceSize != 4096 {
		t.Errorf("unexpected document: %+v", got)
	}

	bySrc, err := s.GetDocumentBySource(ctx, "/data/history.pdf")
	if err != nil {
		t.Fatalf("GetDocumentBySource: %v", err)
	}
	if bySrc.ID != "doc1" {
		t.Errorf("GetDocumentBySource id = %q, want doc1", bySrc.ID)
	}

	doc.SourceSize = 8192
	if err := s.UpdateDocument(ctx, doc); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	got, err = s.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SourceSize != 8192 {
		t.Errorf("SourceSize after update = %d, want 8192", got.SourceSize)
	}

	if err := s.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument(ctx, "doc1"); err != ErrNotFound {
		t.Errorf("GetDocument after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteDocument(ctx, "doc1"); err != ErrNotFound {
		t.Errorf("DeleteDocument missing: err = %v, want ErrNotFound", err)
	}
}

func TestChunkMetadataRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "doc1", Title: "book.pdf", Source: "/data/book.pdf"}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	chunk := &models.Chunk{
		ID:         "doc1_abcd1234",
		DocumentID: "doc1",
		Content:    "Section: Chapter 1\nText: some text",
		ChunkIndex: 0,
		Metadata: models.ChunkMetadata{
			Section:     "Chapter 1",
			CitationRef: "Chapter 1, Page 3",
			PageNumber:  "3",
			Source:      "/data/book.pdf",
		},
	}
	if err := s.CreateChunk(ctx, chunk); err != nil {
		t.Fatalf("CreateChunk: %v", err)
	}

	got, err := s.GetChunk(ctx, "doc1_abcd1234")
	if err != nil {
		t.Fatalf("GetChunk: %v", err)
	}
	if got.Metadata != chunk.Metadata {
		t.Errorf("metadata = %+v, want %+v", got.Metadata, chunk.Metadata)
	}
	if got.Content != chunk.Content {
		t.Errorf("content = %q, want %q", got.Content, chunk.Content)
	}
}

func TestBatchCreateAndQueryChunks(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "doc1", Title: "notes.md", Source: "/data/notes.md"}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	chunks := []*models.Chunk{
		{ID: "c1", DocumentID: "doc1", Content: "first", ChunkIndex: 0},
		{ID: "c2", DocumentID: "doc1", Content: "second", ChunkIndex: 1},
		{ID: "c3", DocumentID: "doc1", Content: "third", ChunkIndex: 2},
	}
	if err := s.BatchCreateChunks(ctx, chunks); err != nil {
		t.Fatalf("BatchCreateChunks: %v", err)
	}

	byDoc, err := s.GetChunksByDocumentID(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(byDoc) != 3 {
		t.Fatalf("got %d chunks, want 3", len(byDoc))
	}
	for i, c := range byDoc {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
	}

	// Order of the input IDs is preserved, missing IDs are skipped.
	byIDs, err := s.GetChunksByIDs(ctx, []string{"c3", "missing", "c1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byIDs) != 2 || byIDs[0].ID != "c3" || byIDs[1].ID != "c1" {
		t.Errorf("GetChunksByIDs order: got %v", chunkIDs(byIDs))
	}

	nDocs, err := s.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	nChunks, err := s.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if nDocs != 1 || nChunks != 3 {
		t.Errorf("counts = (%d, %d), want (1, 3)", nDocs, nChunks)
	}

	if err := s.DeleteChunksByDocumentID(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	nChunks, err = s.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if nChunks != 0 {
		t.Errorf("chunks after delete = %d, want 0", nChunks)
	}
}

func chunkIDs(chunks []*models.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}
