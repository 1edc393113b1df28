package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ports.go -package=mocks finrag/internal/rag Embedder,VectorIndex,FullTextIndex,Engine

import "context"

// Embedder turns query text into a vector in the same space as the indexed
// chunks.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex returns the k chunks closest to vec. Scores are similarities,
// higher is better.
type VectorIndex interface {
	TopK(ctx context.Context, vec []float32, k int, filters Filters) ([]Candidate, error)
}

// FullTextIndex returns the k chunks that best match query lexically.
// Scores are backend rank values, higher is better.
type FullTextIndex interface {
	TopK(ctx context.Context, query string, k int, filters Filters) ([]Candidate, error)
}
