package models

import "time"

// Document represents one ingested source file. SourceMtime and SourceSize
// record the file state at ingest time so unchanged files can be skipped on
// re-ingest.
type Document struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Source      string    `json:"source" db:"source"`
	SourceMtime int64     `json:"source_mtime" db:"source_mtime"`
	SourceSize  int64     `json:"source_size" db:"source_size"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ChunkMetadata is the provenance attached to every chunk. It is copied from
// the TaggedFragment the chunk was split from and is immutable once indexed.
type ChunkMetadata struct {
	Section     string `json:"section"`
	CitationRef string `json:"citation_ref"`
	PageNumber  string `json:"page_number,omitempty"`
	Source      string `json:"source"`
}

// Chunk is the retrieval unit: a bounded slice of document text plus the
// citation metadata inherited from its fragment.
type Chunk struct {
	ID         string        `json:"id" db:"id"`
	DocumentID string        `json:"document_id" db:"document_id"`
	Content    string        `json:"content" db:"content"`
	ChunkIndex int           `json:"chunk_index" db:"chunk_index"`
	Metadata   ChunkMetadata `json:"metadata"`
	Embedding  []float32     `json:"-" db:"-"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
