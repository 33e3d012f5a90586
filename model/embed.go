package model

import "context"

// Embedder turns text into a fixed-length vector. EmbedBatch preserves the
// order of its input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator answers a fully assembled prompt in one round-trip.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
