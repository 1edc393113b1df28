package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks finrag/internal/vectorstore VectorStore

import (
	"context"

	"finrag/internal/rag"
)

// Point is one chunk embedding. ID is the chunk UUID and Payload carries the
// chunk fields needed to rebuild a rag.Candidate without a record lookup.
type Point struct {
	ID      string
	Vec     []float32
	Payload map[string]any
}

// ScoredPoint is a search hit. Score is cosine similarity.
type ScoredPoint struct {
	PointID string
	Score   float32
	Payload map[string]any
}

// VectorStore is the collection-level API Index needs from a vector database.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns at most k points matching filters, best first.
	Search(ctx context.Context, collection string, query []float32, k int, filters rag.Filters) ([]ScoredPoint, error)
	Delete(ctx context.Context, collection string, ids []string) error
}
