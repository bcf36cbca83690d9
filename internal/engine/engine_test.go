package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/OlhaSokur/Test-task-2/internal/llm"
	"github.com/OlhaSokur/Test-task-2/internal/models"
)

type fakeRetriever struct {
	chunks []*models.RetrievedChunk
	err    error
}

func (f *fakeRetriever) Retrieve(_ context.Context, q *models.AskQuery) ([]*models.RetrievedChunk, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return f.chunks, f.err
}

type fakeClient struct {
	reply    string
	err      error
	lastSent []llm.Message
}

func (f *fakeClient) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.lastSent = messages
	return f.reply, f.err
}

// fixedCounter charges a fixed token count per chunk block.
type fixedCounter struct{ perBlock int }

func (c fixedCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return (strings.Count(text, "\n\n") + 1) * c.perBlock
}

func retrievedChunk(id, content, ref string) *models.RetrievedChunk {
	return &models.RetrievedChunk{
		Chunk: &models.Chunk{
			ID:         id,
			DocumentID: "doc1",
			Content:    content,
			Metadata: models.ChunkMetadata{
				CitationRef: ref,
				Source:      "/data/book.pdf",
			},
		},
		Score: 0.9,
	}
}

func newTestEngine(r Retriever, c llm.Client, budget int) *Engine {
	return NewEngine(r, c, fixedCounter{perBlock: 10}, budget, zap.NewNop())
}

func TestAsk_appendsCitations(t *testing.T) {
	retr := &fakeRetriever{chunks: []*models.RetrievedChunk{
		retrievedChunk("c1", "Section: Chapter 1\nText: Rome fell in 476.", "Chapter 1, page 12"),
	}}
	client := &fakeClient{reply: "Rome fell in 476 AD."}

	ans, err := newTestEngine(retr, client, 4000).Ask(context.Background(),
		&models.AskQuery{Question: "When did Rome fall?"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.HasPrefix(ans.Text, "Rome fell in 476 AD.") {
		t.Errorf("answer = %q", ans.Text)
	}
	if !strings.Contains(ans.Text, "Sources:") {
		t.Errorf("citation block missing: %q", ans.Text)
	}
	if !strings.Contains(ans.Text, "Chapter 1 (Page 12)") {
		t.Errorf("parsed citation missing: %q", ans.Text)
	}
	if len(ans.Sources) != 1 {
		t.Errorf("sources = %d, want 1", len(ans.Sources))
	}
}

func TestAsk_promptContainsContextAndQuestion(t *testing.T) {
	retr := &fakeRetriever{chunks: []*models.RetrievedChunk{
		retrievedChunk("c1", "line one\nline two", "Intro, page 1"),
	}}
	client := &fakeClient{reply: "ok"}

	_, err := newTestEngine(retr, client, 4000).Ask(context.Background(),
		&models.AskQuery{Question: "what is it?"})
	if err != nil {
		t.Fatal(err)
	}
	if len(client.lastSent) != 1 {
		t.Fatalf("messages = %d, want 1", len(client.lastSent))
	}
	prompt := client.lastSent[0].Content
	// Newlines inside a chunk are flattened to spaces in the context.
	if !strings.Contains(prompt, "[Source: Intro, page 1] -\nline one line two") {
		t.Errorf("context block missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"what is it?"`) {
		t.Errorf("question missing:\n%s", prompt)
	}
}

func TestAsk_noResults(t *testing.T) {
	ans, err := newTestEngine(&fakeRetriever{}, &fakeClient{}, 4000).Ask(context.Background(),
		&models.AskQuery{Question: "anything"})
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text != replyNotFound {
		t.Errorf("answer = %q", ans.Text)
	}
	if len(ans.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(ans.Sources))
	}
}

func TestAsk_emptyQuestion(t *testing.T) {
	_, err := newTestEngine(&fakeRetriever{}, &fakeClient{}, 4000).Ask(context.Background(),
		&models.AskQuery{})
	if err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestAsk_tokenBudgetDropsChunks(t *testing.T) {
	retr := &fakeRetriever{chunks: []*models.RetrievedChunk{
		retrievedChunk("c1", "first", "A, page 1"),
		retrievedChunk("c2", "second", "B, page 2"),
		retrievedChunk("c3", "third", "C, page 3"),
	}}
	client := &fakeClient{reply: "ok"}

	// Budget of 20 fits two 10-token blocks; the lowest-ranked chunk is dropped.
	ans, err := newTestEngine(retr, client, 20).Ask(context.Background(),
		&models.AskQuery{Question: "q"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ans.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(ans.Sources))
	}
	if ans.Sources[0].Chunk.ID != "c1" || ans.Sources[1].Chunk.ID != "c2" {
		t.Errorf("kept wrong chunks: %s, %s", ans.Sources[0].Chunk.ID, ans.Sources[1].Chunk.ID)
	}
	if strings.Contains(client.lastSent[0].Content, "[Source: C, page 3]") {
		t.Error("dropped chunk still present in prompt")
	}
}

func TestAsk_llmFailuresDegrade(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", llm.ErrRateLimited, replyRateLimited},
		{"connection", llm.ErrConnection, replyConnection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			retr := &fakeRetriever{chunks: []*models.RetrievedChunk{
				retrievedChunk("c1", "text", "A, page 1"),
			}}
			ans, err := newTestEngine(retr, &fakeClient{err: tc.err}, 4000).Ask(context.Background(),
				&models.AskQuery{Question: "q"})
			if err != nil {
				t.Fatal(err)
			}
			if ans.Text != tc.want {
				t.Errorf("answer = %q, want %q", ans.Text, tc.want)
			}
			if len(ans.Sources) != 0 {
				t.Error("failed completion should carry no sources")
			}
		})
	}
}

func TestAsk_retrievalFailureDegrades(t *testing.T) {
	retr := &fakeRetriever{err: errors.New("index corrupt")}
	ans, err := newTestEngine(retr, &fakeClient{}, 4000).Ask(context.Background(),
		&models.AskQuery{Question: "q"})
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text != replySearchError {
		t.Errorf("answer = %q", ans.Text)
	}
}
