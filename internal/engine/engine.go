// Package engine answers questions over the ingested material: it retrieves
// relevant chunks, builds a token-bounded context, queries the LLM, and
// appends the citation block.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OlhaSokur/Test-task-2/internal/citation"
	"github.com/OlhaSokur/Test-task-2/internal/llm"
	"github.com/OlhaSokur/Test-task-2/internal/models"
	"github.com/OlhaSokur/Test-task-2/pkg/utils"
)

// Retriever is the chunk retrieval dependency.
type Retriever interface {
	Retrieve(ctx context.Context, query *models.AskQuery) ([]*models.RetrievedChunk, error)
}

// Fixed replies for the failure modes a user can do something about.
const (
	replyNotFound    = "I could not find information for your question in the loaded documents."
	replyRateLimited = "The AI service request limit was exceeded. Please try again later."
	replyConnection  = "Could not reach the AI service. Please check the connection."
	replySearchError = "The knowledge base is currently unavailable."
)

const promptTemplate = `ROLE:
You are an expert analyst specializing in scientific and technical documentation. Your task is to give precise, structured, well-grounded answers based on the provided text fragments.

CONTEXT:
%s

TASK:
Answer the question: "%s"

STRICT RULES:
1. KNOWLEDGE LIMIT: Use only the provided CONTEXT. If the text has no direct answer, write: "Unfortunately, the provided documents contain no information to answer this question." Do not add facts of your own or from outside sources.
2. CITATIONS: Every claim in your answer must reference its source. Use the format [Source: Title/Section, Page X] at the end of the sentence or paragraph it supports.
3. STRUCTURE: Use bullet lists for processes or enumerations. If the context is contradictory, say so and present the differing views.
4. TONE: Keep a formal, academic style. Skip openers like "According to the text...". Go straight to the point.
5. LANGUAGE: Answer in the same language as the question.`

// Engine wires retrieval, the LLM, and citation rendering together.
type Engine struct {
	retriever        Retriever
	client           llm.Client
	tokens           TokenCounter
	maxContextTokens int
	logger           *zap.Logger
}

// NewEngine creates an engine. maxContextTokens bounds the size of the
// retrieved context passed to the LLM.
func NewEngine(retriever Retriever, client llm.Client, tokens TokenCounter, maxContextTokens int, logger *zap.Logger) *Engine {
	if maxContextTokens <= 0 {
		maxContextTokens = 4000
	}
	return &Engine{
		retriever:        retriever,
		client:           client,
		tokens:           tokens,
		maxContextTokens: maxContextTokens,
		logger:           logger,
	}
}

// Ask answers the question with the citation block already appended.
// Failures past retrieval degrade to a fixed reply instead of an error, so
// the caller always has something to show the user.
func (e *Engine) Ask(ctx context.Context, query *models.AskQuery) (*models.Answer, error) {
	start := time.Now()

	chunks, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		if vErr := query.Validate(); vErr != nil {
			return nil, vErr
		}
		e.logger.Error("retrieval failed", zap.Error(err))
		return &models.Answer{Text: replySearchError, QueryMs: time.Since(start).Milliseconds()}, nil
	}
	if len(chunks) == 0 {
		return &models.Answer{Text: replyNotFound, QueryMs: time.Since(start).Milliseconds()}, nil
	}

	contextText, used := e.buildContext(chunks)
	e.logger.Debug("asking llm",
		zap.String("question", utils.Truncate(query.Question, 120)),
		zap.Int("chunks", len(used)),
		zap.Int("context_chars", len(contextText)))

	reply, err := e.client.Complete(ctx, []llm.Message{
		{Role: "user", Content: fmt.Sprintf(promptTemplate, contextText, query.Question)},
	})
	if err != nil {
		e.logger.Error("llm completion failed", zap.Error(err))
		return &models.Answer{Text: replyFor(err), QueryMs: time.Since(start).Milliseconds()}, nil
	}

	sources := make([]*models.Chunk, len(used))
	for i, rc := range used {
		sources[i] = rc.Chunk
	}
	return &models.Answer{
		Text:    citation.Merge(reply, sources),
		Sources: used,
		QueryMs: time.Since(start).Milliseconds(),
	}, nil
}

// buildContext formats the chunks and drops the lowest-ranked ones until
// the result fits the token budget. Returns the context text and the chunks
// that made it in.
func (e *Engine) buildContext(chunks []*models.RetrievedChunk) (string, []*models.RetrievedChunk) {
	text := formatChunks(chunks)
	count := e.tokens.Count(text)
	for len(chunks) > 1 && count > e.maxContextTokens {
		e.logger.Warn("context over token budget, dropping lowest-ranked chunk",
			zap.Int("tokens", count),
			zap.Int("budget", e.maxContextTokens))
		chunks = chunks[:len(chunks)-1]
		text = formatChunks(chunks)
		count = e.tokens.Count(text)
	}
	return text, chunks
}

// formatChunks renders each chunk as "[Source: ref] -" followed by its text
// with newlines flattened, blocks separated by blank lines.
func formatChunks(chunks []*models.RetrievedChunk) string {
	parts := make([]string, len(chunks))
	for i, rc := range chunks {
		ref := rc.Chunk.Metadata.CitationRef
		if ref == "" {
			ref = "Unknown Source"
		}
		content := strings.ReplaceAll(rc.Chunk.Content, "\n", " ")
		parts[i] = fmt.Sprintf("[Source: %s] -\n%s", ref, content)
	}
	return strings.Join(parts, "\n\n")
}

func replyFor(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return replyRateLimited
	case errors.Is(err, llm.ErrConnection):
		return replyConnection
	default:
		return fmt.Sprintf("A technical error occurred while generating the answer: %v", err)
	}
}
