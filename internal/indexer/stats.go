package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// ChunkerVersion is the version identifier for the chunker implementation.
// Update this when chunking logic changes significantly.
const ChunkerVersion = "v2.0-notes"

// IndexStats describes what is currently in the index.
type IndexStats struct {
	// Documents is the number of indexed documents.
	Documents int `json:"documents"`
	// DocumentsWithoutChunks is the number of documents that produced no chunks.
	DocumentsWithoutChunks int `json:"documents_without_chunks"`
	// Chunks is the number of stored chunks.
	Chunks int `json:"chunks"`
	// CriticalChunks is the number of chunks holding a critical disclosure.
	CriticalChunks int `json:"critical_chunks"`
	// CriticalShare is CriticalChunks / Chunks, rounded to 4 places.
	CriticalShare float64 `json:"critical_share"`
	// ChunkSize contains statistics about chunk sizes in bytes.
	ChunkSize ChunkSizeStats `json:"chunk_size"`
	// ChunkerVersion is the version of the chunker used.
	ChunkerVersion string `json:"chunker_version"`
	// MaxChunkSize is the chunker's byte budget.
	MaxChunkSize int `json:"max_chunk_size"`
	// IndexVersion is a hash identifying the index build (chunker + embedding model + params).
	IndexVersion string `json:"index_version"`
}

// ChunkSizeStats contains statistics about chunk sizes.
type ChunkSizeStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// Stats computes index statistics from the record store. An empty companyID
// covers every company.
func (p *Pipeline) Stats(ctx context.Context, companyID string) (*IndexStats, error) {
	stats := &IndexStats{
		ChunkerVersion: ChunkerVersion,
		MaxChunkSize:   p.chunker.MaxChunkSize(),
		IndexVersion:   indexVersion(p.model, p.chunker.MaxChunkSize()),
	}

	docs, err := p.documents.Count(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	stats.Documents = docs

	empty, err := p.documents.CountWithoutChunks(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents without chunks: %w", err)
	}
	stats.DocumentsWithoutChunks = empty

	sizes, err := p.chunks.ListSizes(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk sizes: %w", err)
	}

	stats.Chunks = len(sizes)
	counts := make([]int, len(sizes))
	for i, s := range sizes {
		counts[i] = s.CharCount
		if s.IsCritical {
			stats.CriticalChunks++
		}
	}
	if stats.Chunks > 0 {
		share := float64(stats.CriticalChunks) / float64(stats.Chunks)
		stats.CriticalShare = math.Round(share*10000) / 10000
	}
	stats.ChunkSize = computeSizeStats(counts)

	return stats, nil
}

// indexVersion hashes everything that changes the stored chunks or vectors.
func indexVersion(embeddingModel string, maxChunkSize int) string {
	input := fmt.Sprintf("%s|%s|maxChunkSize=%d", ChunkerVersion, embeddingModel, maxChunkSize)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16] // 16 hex chars = 64 bits
}

// computeSizeStats computes min, max, mean, and p95 from chunk sizes.
func computeSizeStats(sizes []int) ChunkSizeStats {
	if len(sizes) == 0 {
		return ChunkSizeStats{}
	}

	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkSizeStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
