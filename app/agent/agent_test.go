package agent

import (
	"context"
	"errors"
	"testing"

	"pdfrag/store"
	"pdfrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	results   []types.RetrievalResult
	err       error
	lastLimit int
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }

func (f *fakeStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	return nil, nil
}

func (f *fakeStore) UpsertBatch(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	return nil
}

func (f *fakeStore) Search(ctx context.Context, queryVec []float32, limit int) ([]types.RetrievalResult, error) {
	f.lastLimit = limit
	return f.results, f.err
}

func (f *fakeStore) Clear(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                    { return nil }

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.5, 0.5}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5, 0.5}
	}
	return out, nil
}

type fakeGenerator struct {
	prompt string
	answer string
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestAskReturnsTopResultAsSource(t *testing.T) {
	storer := &fakeStore{results: []types.RetrievalResult{
		{ID: "content/doc.pdf:0:0", Content: "The accuracy was 95%", Score: 0.92},
	}}
	gen := &fakeGenerator{answer: "The accuracy was 95%."}

	a := New(storer, &fakeEmbedder{}, gen)
	answer, err := a.Ask(context.Background(), "What was the accuracy?", 5)

	require.NoError(t, err)
	assert.Equal(t, "The accuracy was 95%.", answer.Text)
	assert.Equal(t, []string{"content/doc.pdf:0:0"}, answer.Sources)
}

func TestAskKeepsSourceOrderWithDuplicates(t *testing.T) {
	storer := &fakeStore{results: []types.RetrievalResult{
		{ID: "a.pdf:1:0", Content: "one", Score: 0.9},
		{ID: "a.pdf:0:2", Content: "two", Score: 0.8},
		{ID: "a.pdf:1:0", Content: "one", Score: 0.7},
	}}
	gen := &fakeGenerator{answer: "ok"}

	a := New(storer, &fakeEmbedder{}, gen)
	answer, err := a.Ask(context.Background(), "q", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf:1:0", "a.pdf:0:2", "a.pdf:1:0"}, answer.Sources)
}

func TestRetrieveClampsK(t *testing.T) {
	storer := &fakeStore{}
	a := New(storer, &fakeEmbedder{}, &fakeGenerator{})

	_, err := a.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, storer.lastLimit)

	_, err = a.Retrieve(context.Background(), "q", 99)
	require.NoError(t, err)
	assert.Equal(t, 10, storer.lastLimit)
}

func TestRetrieveSurfacesIndexNotFound(t *testing.T) {
	storer := &fakeStore{err: store.ErrIndexNotFound}
	a := New(storer, &fakeEmbedder{}, &fakeGenerator{})

	_, err := a.Retrieve(context.Background(), "q", 5)
	assert.ErrorIs(t, err, store.ErrIndexNotFound)
}

func TestAskSurfacesGenerationFailure(t *testing.T) {
	storer := &fakeStore{results: []types.RetrievalResult{{ID: "a.pdf:0:0", Content: "x"}}}
	gen := &fakeGenerator{err: errors.New("upstream timeout")}

	a := New(storer, &fakeEmbedder{}, gen)
	_, err := a.Ask(context.Background(), "q", 5)

	assert.EqualError(t, err, "upstream timeout")
}

func TestBuildPromptFormat(t *testing.T) {
	results := []types.RetrievalResult{
		{Content: "first passage"},
		{Content: "second passage"},
	}

	prompt := BuildPrompt(results, "What happened?")

	assert.Contains(t, prompt, "Answer the question based only on the following context:")
	assert.Contains(t, prompt, "first passage\n\n---\n\nsecond passage")
	assert.Contains(t, prompt, "Answer the question based on the above context: What happened?")
}
