// Package retrieval finds the chunks most relevant to a question by
// combining semantic and keyword search.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/OlhaSokur/Test-task-2/internal/config"
	"github.com/OlhaSokur/Test-task-2/internal/embedding"
	"github.com/OlhaSokur/Test-task-2/internal/keyword"
	"github.com/OlhaSokur/Test-task-2/internal/models"
	"github.com/OlhaSokur/Test-task-2/internal/storage"
	"github.com/OlhaSokur/Test-task-2/internal/vector"
)

// Retriever runs hybrid retrieval over the chunk indexes. The semantic leg
// is primary; the keyword leg is optional and merged by max score.
type Retriever struct {
	storage      storage.Storage
	embedder     embedding.Embedder
	vectorIndex  vector.Index
	keywordIndex keyword.Index
	config       *config.RetrievalConfig
}

// NewRetriever creates a retriever with the given dependencies.
// keywordIndex may be nil when the keyword leg is disabled.
func NewRetriever(
	store storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.Index,
	cfg *config.RetrievalConfig,
) *Retriever {
	return &Retriever{
		storage:      store,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		config:       cfg,
	}
}

// Retrieve returns up to query.TopK chunks scoring at or above
// query.Threshold, best first.
func (r *Retriever) Retrieve(ctx context.Context, query *models.AskQuery) ([]*models.RetrievedChunk, error) {
	if query.TopK <= 0 {
		query.TopK = r.config.TopK
	}
	if query.Threshold <= 0 {
		query.Threshold = r.config.Threshold
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	topK := query.TopK
	threshold := query.Threshold

	var (
		semanticResults []*vector.Result
		keywordResults  []*keyword.Result
		errChan         = make(chan error, 2)
		wg              sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		queryEmbedding, err := r.embedder.Embed(ctx, query.Question)
		if err != nil {
			errChan <- fmt.Errorf("embed query: %w", err)
			return
		}
		results, err := r.vectorIndex.Search(ctx, queryEmbedding, r.config.TopKCandidates)
		if err != nil {
			errChan <- fmt.Errorf("vector search: %w", err)
			return
		}
		semanticResults = results
	}()

	if r.config.KeywordEnabled && r.keywordIndex != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := r.keywordIndex.Search(ctx, query.Question, r.config.TopKCandidates)
			if err != nil {
				errChan <- fmt.Errorf("keyword search: %w", err)
				return
			}
			keywordResults = results
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	scores := mergeScores(semanticResults, keywordResults)

	ids := make([]string, 0, len(scores))
	for id, score := range scores {
		if score >= threshold {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	chunks, err := r.storage.GetChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	retrieved := make([]*models.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		retrieved = append(retrieved, &models.RetrievedChunk{
			Chunk: chunk,
			Score: scores[chunk.ID],
		})
	}
	sort.SliceStable(retrieved, func(i, j int) bool {
		return retrieved[i].Score > retrieved[j].Score
	})
	if len(retrieved) > topK {
		retrieved = retrieved[:topK]
	}
	return retrieved, nil
}

// mergeScores combines both legs per chunk, keeping the higher score.
// Keyword scores are normalized to [0, 1] against the best hit so they are
// comparable with cosine similarity.
func mergeScores(semantic []*vector.Result, kw []*keyword.Result) map[string]float64 {
	scores := make(map[string]float64, len(semantic)+len(kw))
	for _, r := range semantic {
		scores[r.ID] = r.Score
	}
	if len(kw) == 0 {
		return scores
	}
	max := kw[0].Score
	for _, r := range kw[1:] {
		if r.Score > max {
			max = r.Score
		}
	}
	if max <= 0 {
		return scores
	}
	for _, r := range kw {
		norm := r.Score / max
		if norm > scores[r.ID] {
			scores[r.ID] = norm
		}
	}
	return scores
}
