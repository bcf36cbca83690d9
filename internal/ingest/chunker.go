package ingest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OlhaSokur/Test-task-2/internal/models"
)

// Chunker re-splits tagged fragments into overlapping word-based chunks.
// Every chunk inherits its fragment's citation metadata unchanged, so
// provenance survives the 1→N split.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Split chunks all fragments of one document, numbering chunks sequentially
// across the whole document.
func (c *Chunker) Split(docID string, fragments []models.TaggedFragment) []*models.Chunk {
	chunks := make([]*models.Chunk, 0, len(fragments))
	chunkIndex := 0
	for _, frag := range fragments {
		for _, text := range c.windows(frag.Content) {
			chunks = append(chunks, &models.Chunk{
				ID:         fmt.Sprintf("%s_%s", docID, uuid.New().String()[:8]),
				DocumentID: docID,
				Content:    text,
				ChunkIndex: chunkIndex,
				Metadata: models.ChunkMetadata{
					Section:     frag.Section,
					CitationRef: frag.CitationRef,
					PageNumber:  frag.PageNumber,
					Source:      frag.Source,
				},
			})
			chunkIndex++
		}
	}
	return chunks
}

// windows splits text into overlapping word windows.
func (c *Chunker) windows(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	out := make([]string, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
		if end >= len(words) {
			break
		}
	}
	return out
}
