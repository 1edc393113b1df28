package vectorstore

import (
	"context"
	"fmt"

	"finrag/internal/rag"
	"finrag/internal/storage"
)

// Index stores chunk embeddings in one collection and answers similarity
// queries as a rag.VectorIndex.
type Index struct {
	store      VectorStore
	collection string
}

var _ rag.VectorIndex = (*Index)(nil)

// NewIndex creates an Index over collection.
func NewIndex(store VectorStore, collection string) *Index {
	return &Index{store: store, collection: collection}
}

// TopK implements rag.VectorIndex.
func (i *Index) TopK(ctx context.Context, vec []float32, k int, filters rag.Filters) ([]rag.Candidate, error) {
	results, err := i.store.Search(ctx, i.collection, vec, k, filters)
	if err != nil {
		return nil, err
	}
	out := make([]rag.Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, candidateFromPayload(r))
	}
	return out, nil
}

// UpsertChunks stores one point per chunk. vectors[i] belongs to chunks[i].
func (i *Index) UpsertChunks(ctx context.Context, chunks []*storage.ChunkRecord, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	points := make([]Point, len(chunks))
	for n, c := range chunks {
		points[n] = Point{ID: c.ID, Vec: vectors[n], Payload: chunkPayload(c)}
	}
	return i.store.Upsert(ctx, i.collection, points)
}

// DeleteChunks removes the points of the given chunk IDs.
func (i *Index) DeleteChunks(ctx context.Context, ids []string) error {
	return i.store.Delete(ctx, i.collection, ids)
}
