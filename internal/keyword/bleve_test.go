package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndexSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunks := []*models.Chunk{
		{ID: "c1", Content: "kinetic energy of a moving body", Metadata: models.ChunkMetadata{Section: "Chapter 2"}},
		{ID: "c2", Content: "electric charge and current", Metadata: models.ChunkMetadata{Section: "Chapter 5"}},
	}
	for _, ch := range chunks {
		if err := idx.Index(ctx, ch); err != nil {
			t.Fatal(err)
		}
	}

	results, err := idx.Search(ctx, "energy", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c1" {
		t.Errorf("unexpected results: %+v", results)
	}

	count, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("doc count = %d, want 2", count)
	}
}

func TestBleveIndexSectionSearchable(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	chunk := &models.Chunk{
		ID:       "c1",
		Content:  "body text only",
		Metadata: models.ChunkMetadata{Section: "Thermodynamics"},
	}
	if err := idx.Index(ctx, chunk); err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(ctx, "thermodynamics", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("section words must be searchable, got %+v", results)
	}
}

func TestBleveIndexDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_ = idx.Index(ctx, &models.Chunk{ID: "c1", Content: "some text here"})
	if err := idx.Delete(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(ctx, "text", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("deleted chunk still returned: %+v", results)
	}
}
