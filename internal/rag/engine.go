package rag

import (
	"context"
	"sync"

	"finrag/internal/contextutil"
)

// Tier fan-out factors relative to the requested result count.
const (
	vectorFanout  = 3
	keywordFanout = 2
)

// DefaultTopK is used when a request leaves TopK at zero.
const DefaultTopK = 10

// Engine answers retrieval requests.
type Engine interface {
	// Retrieve returns at most TopK ranked chunks. Backend failures degrade
	// to fewer results, never to an error.
	Retrieve(ctx context.Context, req Request) []RetrievalResult
}

// Options tunes the hybrid engine.
type Options struct {
	DefaultTopK         int
	SimilarityThreshold float64
	MaxPerPage          int
}

// hybridEngine combines vector and keyword search, re-ranks by query
// section hints and removes near duplicates.
type hybridEngine struct {
	embedder Embedder
	vectors  VectorIndex
	keywords FullTextIndex
	opts     Options
}

// NewEngine creates a hybrid retrieval engine. Any collaborator may be nil,
// in which case its tier is always empty.
func NewEngine(embedder Embedder, vectors VectorIndex, keywords FullTextIndex, opts Options) Engine {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = DefaultTopK
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if opts.MaxPerPage <= 0 {
		opts.MaxPerPage = DefaultMaxPerPage
	}
	return &hybridEngine{
		embedder: embedder,
		vectors:  vectors,
		keywords: keywords,
		opts:     opts,
	}
}

// Retrieve implements Engine.
func (e *hybridEngine) Retrieve(ctx context.Context, req Request) []RetrievalResult {
	logger := contextutil.LoggerFromContext(ctx)

	topK := req.TopK
	if topK <= 0 {
		topK = e.opts.DefaultTopK
	}

	filters := req.Filters
	filters.CompanyID = req.CompanyID
	if req.InferFilters {
		filters = InferFilters(req.Query, filters)
	}

	var (
		wg             sync.WaitGroup
		vectorResults  []RetrievalResult
		keywordResults []RetrievalResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorResults = e.vectorTier(ctx, req.Query, topK*vectorFanout, filters)
	}()
	go func() {
		defer wg.Done()
		keywordResults = e.keywordTier(ctx, req.Query, topK*keywordFanout, filters)
	}()
	wg.Wait()

	merged := merge(vectorResults, keywordResults)
	ranked := rerank(merged, req.Query, filters)

	var final []RetrievalResult
	if req.DisableDedup {
		final = ranked
		if len(final) > topK {
			final = final[:topK]
		}
	} else {
		threshold := e.opts.SimilarityThreshold
		if req.SimilarityThreshold > 0 {
			threshold = req.SimilarityThreshold
		}
		final = Deduplicate(ranked, DedupOptions{
			SimilarityThreshold: threshold,
			MaxChunks:           topK,
			MaxPerPage:          e.opts.MaxPerPage,
		})
	}

	logger.InfoContext(ctx, "retrieval completed",
		"company_id", req.CompanyID,
		"top_k", topK,
		"vector_hits", len(vectorResults),
		"keyword_hits", len(keywordResults),
		"merged", len(merged),
		"returned", len(final),
	)
	return final
}

func (e *hybridEngine) vectorTier(ctx context.Context, query string, k int, filters Filters) []RetrievalResult {
	logger := contextutil.LoggerFromContext(ctx)
	if e.embedder == nil || e.vectors == nil {
		return nil
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		logger.WarnContext(ctx, "query embedding failed, skipping vector tier", "error", err)
		return nil
	}
	if len(vec) == 0 {
		logger.WarnContext(ctx, "empty query embedding, skipping vector tier")
		return nil
	}

	hits, err := e.vectors.TopK(ctx, vec, k, filters)
	if err != nil {
		logger.WarnContext(ctx, "vector search failed", "error", err)
		return nil
	}
	return toResults(hits, TierVector)
}

func (e *hybridEngine) keywordTier(ctx context.Context, query string, k int, filters Filters) []RetrievalResult {
	logger := contextutil.LoggerFromContext(ctx)
	if e.keywords == nil {
		return nil
	}

	hits, err := e.keywords.TopK(ctx, query, k, filters)
	if err != nil {
		logger.WarnContext(ctx, "keyword search failed", "error", err)
		return nil
	}
	return toResults(hits, TierKeyword)
}

func toResults(hits []Candidate, tier Tier) []RetrievalResult {
	out := make([]RetrievalResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, fromCandidate(h, tier))
	}
	return out
}

// merge unions the tiers by chunk ID. Vector hits come first and the first
// occurrence of an ID wins.
func merge(tiers ...[]RetrievalResult) []RetrievalResult {
	seen := make(map[string]struct{})
	var out []RetrievalResult
	for _, tier := range tiers {
		for _, r := range tier {
			if _, ok := seen[r.ChunkID]; ok {
				continue
			}
			seen[r.ChunkID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
