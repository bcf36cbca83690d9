package ingest

import (
	"strings"
	"testing"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

func TestChunkerSplit(t *testing.T) {
	c := NewChunker(3, 1)
	frag := models.TaggedFragment{
		Content:     "one two three four five six seven",
		Section:     "Chapter 1",
		CitationRef: "Chapter 1, Page 2",
		PageNumber:  "2",
		Source:      "/data/b.pdf",
	}
	chunks := c.Split("doc1", []models.TaggedFragment{frag})
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.DocumentID != "doc1" {
			t.Errorf("chunk %d DocumentID = %s", i, ch.DocumentID)
		}
		if ch.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex = %d", i, ch.ChunkIndex)
		}
		if !strings.HasPrefix(ch.ID, "doc1_") {
			t.Errorf("chunk %d ID = %q", i, ch.ID)
		}
		// Metadata is inherited by every chunk of the fragment.
		if ch.Metadata.CitationRef != frag.CitationRef || ch.Metadata.Section != frag.Section {
			t.Errorf("chunk %d lost metadata: %+v", i, ch.Metadata)
		}
		if ch.Metadata.PageNumber != "2" || ch.Metadata.Source != "/data/b.pdf" {
			t.Errorf("chunk %d metadata: %+v", i, ch.Metadata)
		}
	}
}

func TestChunkerSplitEmpty(t *testing.T) {
	c := NewChunker(5, 1)
	chunks := c.Split("d", []models.TaggedFragment{{Content: "   \n\t  "}})
	if len(chunks) != 0 {
		t.Errorf("empty fragment should produce no chunks, got %d", len(chunks))
	}
}

func TestChunkerIndexContinuesAcrossFragments(t *testing.T) {
	c := NewChunker(50, 10)
	fragments := []models.TaggedFragment{
		{Content: "first fragment text"},
		{Content: "second fragment text"},
	}
	chunks := c.Split("d", fragments)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkIndex != 0 || chunks[1].ChunkIndex != 1 {
		t.Errorf("chunk indices: %d, %d", chunks[0].ChunkIndex, chunks[1].ChunkIndex)
	}
}
