package models

import "fmt"

// AskQuery is a question against the ingested material.
type AskQuery struct {
	Question  string  `json:"question"`
	TopK      int     `json:"top_k,omitempty"`
	Threshold float64 `json:"threshold,omitempty"` // minimum cosine similarity for retrieved chunks
}

// Validate normalizes the query and returns an error when the question is empty.
func (q *AskQuery) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if q.TopK <= 0 {
		q.TopK = 5
	}
	if q.TopK > 50 {
		q.TopK = 50
	}
	if q.Threshold < 0 {
		q.Threshold = 0
	}
	return nil
}

// RetrievedChunk is a chunk returned for a query together with its similarity score.
type RetrievedChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// Answer is the engine output: the model's answer text and the chunks it was
// grounded on. Sources drive citation aggregation; an empty Sources slice
// means no citation block is rendered.
type Answer struct {
	Text    string            `json:"text"`
	Sources []*RetrievedChunk `json:"sources"`
	QueryMs int64             `json:"query_time_ms"`
}
