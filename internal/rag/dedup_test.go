package rag

import (
	"reflect"
	"strings"
	"testing"
)

func result(id, text string, score float64, pages ...int) RetrievalResult {
	return RetrievalResult{ChunkID: id, ChunkText: text, Score: score, PageNumbers: pages, RetrievalTier: TierVector}
}

// letters returns a text that shares no characters with letters(other).
func letters(ch byte) string {
	return strings.Repeat(string(ch), 30)
}

func ids(results []RetrievalResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ChunkID
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name    string
		results []RetrievalResult
		opts    DedupOptions
		want    []string
	}{
		{
			name: "identical text keeps higher score",
			results: []RetrievalResult{
				result("low", "Revenue from operations grew 12%", 0.4, 1),
				result("high", "Revenue from operations grew 12%", 0.8, 2),
			},
			opts: DedupOptions{MaxChunks: 5},
			want: []string{"high"},
		},
		{
			name: "case and surrounding space ignored",
			results: []RetrievalResult{
				result("a", "Deferred tax assets", 0.9, 1),
				result("b", "  DEFERRED TAX ASSETS\n", 0.5, 2),
			},
			opts: DedupOptions{MaxChunks: 5},
			want: []string{"a"},
		},
		{
			name: "dissimilar text kept",
			results: []RetrievalResult{
				result("a", letters('a'), 0.9, 1),
				result("b", letters('b'), 0.8, 2),
				result("c", letters('c'), 0.7, 3),
			},
			opts: DedupOptions{MaxChunks: 5},
			want: []string{"a", "b", "c"},
		},
		{
			name: "threshold one keeps near duplicates",
			results: []RetrievalResult{
				result("a", letters('a'), 0.9, 1),
				result("b", letters('a')[:29]+"z", 0.8, 2),
			},
			opts: DedupOptions{MaxChunks: 5, SimilarityThreshold: 1},
			want: []string{"a", "b"},
		},
		{
			name: "page cap",
			results: []RetrievalResult{
				result("a", letters('a'), 0.9, 4),
				result("b", letters('b'), 0.8, 4, 5),
				result("c", letters('c'), 0.7, 4),
				result("d", letters('d'), 0.6, 5, 4),
				result("e", letters('e'), 0.5),
				result("f", letters('f'), 0.4),
				result("g", letters('g'), 0.3),
			},
			opts: DedupOptions{MaxChunks: 10},
			want: []string{"a", "b", "d", "e", "f", "g"},
		},
		{
			name: "truncate to max chunks",
			results: []RetrievalResult{
				result("a", letters('a'), 0.9, 1),
				result("b", letters('b'), 0.8, 2),
				result("c", letters('c'), 0.7, 3),
			},
			opts: DedupOptions{MaxChunks: 2},
			want: []string{"a", "b"},
		},
		{
			name: "page cap runs on the first twice max chunks",
			results: []RetrievalResult{
				result("a", letters('a'), 0.9, 1),
				result("b", letters('b'), 0.8, 1),
				result("c", letters('c'), 0.7, 1),
				result("d", letters('d'), 0.6, 1),
				result("e", letters('e'), 0.5, 2),
			},
			opts: DedupOptions{MaxChunks: 2, MaxPerPage: 1},
			want: []string{"a"},
		},
		{
			name: "unsorted input",
			results: []RetrievalResult{
				result("b", letters('b'), 0.2, 2),
				result("a", letters('a'), 0.9, 1),
			},
			opts: DedupOptions{MaxChunks: 5},
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Deduplicate(tt.results, tt.opts))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Deduplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	if got := Deduplicate(nil, DedupOptions{MaxChunks: 5}); got == nil || len(got) != 0 {
		t.Errorf("Deduplicate(nil) = %#v, want empty slice", got)
	}
	in := []RetrievalResult{result("a", "text", 1, 1)}
	if got := Deduplicate(in, DedupOptions{MaxChunks: 0}); len(got) != 0 {
		t.Errorf("MaxChunks 0 returned %v", ids(got))
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []RetrievalResult{
		result("a", letters('a'), 0.9, 1),
		result("a2", letters('a')[:28]+"xy", 0.85, 2),
		result("b", letters('b'), 0.8, 1),
		result("c", letters('c'), 0.7, 1),
		result("d", letters('d'), 0.6, 3),
		result("e", "Contingent liabilities not provided for", 0.5),
		result("e2", "Contingent liabilities not provided for.", 0.45),
		result("f", letters('f'), 0.4, 3),
		result("g", letters('g'), 0.3, 3),
	}
	opts := DedupOptions{MaxChunks: 6}

	once := Deduplicate(in, opts)
	twice := Deduplicate(once, opts)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Deduplicate is not idempotent:\nonce  %v\ntwice %v", ids(once), ids(twice))
	}
}

func TestDeduplicate_DoesNotModifyInput(t *testing.T) {
	in := []RetrievalResult{
		result("b", letters('b'), 0.2, 2),
		result("a", letters('a'), 0.9, 1),
	}
	Deduplicate(in, DedupOptions{MaxChunks: 5})
	if in[0].ChunkID != "b" {
		t.Errorf("input was reordered: %v", ids(in))
	}
}

func TestDeduplicate_PageCapHolds(t *testing.T) {
	var in []RetrievalResult
	for i := 0; i < 10; i++ {
		in = append(in, result(string(rune('a'+i)), letters(byte('a'+i)), 1-float64(i)*0.05, 9))
	}
	got := Deduplicate(in, DedupOptions{MaxChunks: 10, MaxPerPage: 2})
	if len(got) != 2 {
		t.Errorf("page 9 contributed %d results, want 2", len(got))
	}
}
