package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// promptTemplate instructs the model to answer strictly from the
	// retrieved context.
	promptTemplate = `Answer the question based only on the following context:

%s

---

Answer the question based on the above context: %s`

	contextSeparator = "\n\n---\n\n"

	defaultTopK = 5
	maxTopK     = 10
)

// Agent runs the query path: retrieve the most similar stored chunks, build
// the grounding prompt, invoke the generative model once and attach sources.
type Agent struct {
	store     store.VectorStorer
	embedder  model.Embedder
	generator model.Generator
}

func New(storer store.VectorStorer, embedder model.Embedder, generator model.Generator) *Agent {
	return &Agent{
		store:     storer,
		embedder:  embedder,
		generator: generator,
	}
}

// Retrieve returns the top-k stored chunks most similar to the question,
// ordered by descending similarity. Read-only; fails with
// store.ErrIndexNotFound when no index has ever been built.
func (a *Agent) Retrieve(ctx context.Context, question string, k int) ([]types.RetrievalResult, error) {
	if k <= 0 {
		k = defaultTopK
	}
	if k > maxTopK {
		k = maxTopK
	}

	queryVec, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := a.store.Search(ctx, queryVec, k)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Ask answers one question. A transient generation failure is surfaced to
// the caller; there is no retry on this path.
func (a *Agent) Ask(ctx context.Context, question string, k int) (*types.Answer, error) {
	results, err := a.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(results, question)

	if count, err := countTokens(prompt); err == nil {
		log.Printf("[AGENT] prompt size: %d tokens, %d symbols", count, len(prompt))
	}

	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sources := make([]string, len(results))
	for i, r := range results {
		sources[i] = r.ID
	}

	return &types.Answer{
		Text:    text,
		Sources: sources,
	}, nil
}

// BuildPrompt concatenates the retrieved contents with an explicit separator
// and appends the instruction plus the question.
func BuildPrompt(results []types.RetrievalResult, question string) string {
	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	return fmt.Sprintf(promptTemplate, strings.Join(contents, contextSeparator), question)
}

func countTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
