package rag

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Defaults for Deduplicate.
const (
	DefaultSimilarityThreshold = 0.75
	DefaultMaxPerPage          = 2
)

// DedupOptions configures Deduplicate.
type DedupOptions struct {
	// SimilarityThreshold is the sequence-match ratio at or above which a
	// result counts as a near duplicate of one already kept.
	SimilarityThreshold float64
	// MaxChunks caps the output length.
	MaxChunks int
	// MaxPerPage caps results sharing the same first page number.
	MaxPerPage int
}

func (o DedupOptions) withDefaults() DedupOptions {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.MaxPerPage <= 0 {
		o.MaxPerPage = DefaultMaxPerPage
	}
	return o
}

// Deduplicate removes near-duplicate texts, limits how many results come from
// one page and truncates to MaxChunks. Results are considered in descending
// score order and the higher scored copy of a duplicate is kept. The input is
// not modified.
func Deduplicate(results []RetrievalResult, opts DedupOptions) []RetrievalResult {
	opts = opts.withDefaults()
	if len(results) == 0 || opts.MaxChunks <= 0 {
		return []RetrievalResult{}
	}

	ordered := make([]RetrievalResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	distinct := removeSimilar(ordered, opts.SimilarityThreshold, 2*opts.MaxChunks)
	diverse := capPerPage(distinct, opts.MaxPerPage)

	if len(diverse) > opts.MaxChunks {
		diverse = diverse[:opts.MaxChunks]
	}
	return diverse
}

func removeSimilar(results []RetrievalResult, threshold float64, limit int) []RetrievalResult {
	kept := make([]RetrievalResult, 0, min(len(results), limit))
	keptText := make([][]string, 0, cap(kept))

	for _, r := range results {
		text := charSeq(r.ChunkText)
		duplicate := false
		for _, k := range keptText {
			if similarity(text, k) >= threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, r)
		keptText = append(keptText, text)
		if len(kept) >= limit {
			break
		}
	}
	return kept
}

func capPerPage(results []RetrievalResult, maxPerPage int) []RetrievalResult {
	counts := make(map[int]int)
	out := make([]RetrievalResult, 0, len(results))
	for _, r := range results {
		if len(r.PageNumbers) == 0 {
			out = append(out, r)
			continue
		}
		page := r.PageNumbers[0]
		if counts[page] >= maxPerPage {
			continue
		}
		counts[page]++
		out = append(out, r)
	}
	return out
}

// charSeq splits the normalised text into single characters so the
// matcher works on characters rather than lines.
func charSeq(text string) []string {
	return strings.Split(strings.ToLower(strings.TrimSpace(text)), "")
}

func similarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	return difflib.NewMatcher(a, b).Ratio()
}
