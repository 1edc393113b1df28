package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

type fakeVectorIndex struct {
	hits       []Candidate
	err        error
	calls      int
	gotK       int
	gotFilters Filters
}

func (f *fakeVectorIndex) TopK(ctx context.Context, vec []float32, k int, filters Filters) ([]Candidate, error) {
	f.calls++
	f.gotK = k
	f.gotFilters = filters
	return f.hits, f.err
}

type fakeFullTextIndex struct {
	hits       []Candidate
	err        error
	calls      int
	gotK       int
	gotFilters Filters
}

func (f *fakeFullTextIndex) TopK(ctx context.Context, query string, k int, filters Filters) ([]Candidate, error) {
	f.calls++
	f.gotK = k
	f.gotFilters = filters
	return f.hits, f.err
}

var errBackendDown = errors.New("backend down")

func candidate(id, text string, score float64, page int, sections ...string) Candidate {
	return Candidate{
		ChunkID:      id,
		Text:         text,
		ChunkType:    "paragraph",
		SectionTypes: sections,
		PageNumbers:  []int{page},
		Score:        score,
	}
}

func TestRetrieve_VectorDownKeywordOnly(t *testing.T) {
	vectors := &fakeVectorIndex{err: errBackendDown}
	keywords := &fakeFullTextIndex{hits: []Candidate{
		candidate("k1", "Trade receivables considered good 1,504.69", 0.9, 10, "revenue_details"),
		candidate("k2", "Ageing of receivables beyond six months", 0.6, 11, "revenue_details"),
		candidate("k3", "Allowance for expected credit loss", 0.3, 12, "revenue_details"),
	}}

	engine := NewEngine(&fakeEmbedder{vec: []float32{0.1, 0.2}}, vectors, keywords, Options{})
	got := engine.Retrieve(context.Background(), Request{Query: "trade receivables ageing", CompanyID: "acme", TopK: 5})

	if len(got) != 3 {
		t.Fatalf("Retrieve() returned %d results, want 3", len(got))
	}
	for i, want := range []string{"k1", "k2", "k3"} {
		if got[i].ChunkID != want {
			t.Errorf("result %d = %s, want %s", i, got[i].ChunkID, want)
		}
		if got[i].RetrievalTier != TierKeyword {
			t.Errorf("result %d tier = %q, want keyword", i, got[i].RetrievalTier)
		}
	}
	if vectors.calls != 1 {
		t.Errorf("vector index called %d times, want 1", vectors.calls)
	}
}

func TestRetrieve_EmbeddingFailureSkipsVectorIndex(t *testing.T) {
	vectors := &fakeVectorIndex{hits: []Candidate{candidate("v1", "text", 0.9, 1)}}
	keywords := &fakeFullTextIndex{hits: []Candidate{candidate("k1", "other", 0.4, 2)}}

	engine := NewEngine(&fakeEmbedder{err: errBackendDown}, vectors, keywords, Options{})
	got := engine.Retrieve(context.Background(), Request{Query: "q", TopK: 3})

	if vectors.calls != 0 {
		t.Errorf("vector index should not be queried without an embedding")
	}
	if len(got) != 1 || got[0].ChunkID != "k1" {
		t.Errorf("Retrieve() = %+v, want only k1", got)
	}
}

func TestRetrieve_BothTiersDown(t *testing.T) {
	engine := NewEngine(
		&fakeEmbedder{vec: []float32{1}},
		&fakeVectorIndex{err: errBackendDown},
		&fakeFullTextIndex{err: errBackendDown},
		Options{},
	)
	if got := engine.Retrieve(context.Background(), Request{Query: "fair value"}); len(got) != 0 {
		t.Errorf("Retrieve() = %+v, want empty", got)
	}

	nilEngine := NewEngine(nil, nil, nil, Options{})
	if got := nilEngine.Retrieve(context.Background(), Request{Query: "fair value"}); len(got) != 0 {
		t.Errorf("engine without backends returned %+v", got)
	}
}

func TestRetrieve_FanoutAndFilters(t *testing.T) {
	tests := []struct {
		name        string
		topK        int
		wantVector  int
		wantKeyword int
	}{
		{"explicit", 4, 12, 8},
		{"default", 0, 30, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vectors := &fakeVectorIndex{}
			keywords := &fakeFullTextIndex{}
			engine := NewEngine(&fakeEmbedder{vec: []float32{1}}, vectors, keywords, Options{})

			engine.Retrieve(context.Background(), Request{
				Query:     "borrowings",
				CompanyID: "acme",
				TopK:      tt.topK,
				Filters:   Filters{StatementType: "standalone"},
			})

			if vectors.gotK != tt.wantVector || keywords.gotK != tt.wantKeyword {
				t.Errorf("k = %d/%d, want %d/%d", vectors.gotK, keywords.gotK, tt.wantVector, tt.wantKeyword)
			}
			for _, f := range []Filters{vectors.gotFilters, keywords.gotFilters} {
				if f.CompanyID != "acme" || f.StatementType != "standalone" {
					t.Errorf("filters = %+v, want company acme and standalone", f)
				}
			}
		})
	}
}

func TestRetrieve_InferFilters(t *testing.T) {
	keywords := &fakeFullTextIndex{}
	engine := NewEngine(nil, nil, keywords, Options{})

	engine.Retrieve(context.Background(), Request{
		Query:        "What is Note 10 about in the consolidated statements?",
		InferFilters: true,
	})
	if keywords.gotFilters.StatementType != "consolidated" || keywords.gotFilters.NoteNumber != "Note 10" {
		t.Errorf("inferred filters = %+v", keywords.gotFilters)
	}

	engine.Retrieve(context.Background(), Request{Query: "What is Note 10 about?"})
	if keywords.gotFilters.NoteNumber != "" {
		t.Errorf("filters should not be inferred unless requested, got %+v", keywords.gotFilters)
	}
}

func TestRetrieve_MergePrefersVector(t *testing.T) {
	vectors := &fakeVectorIndex{hits: []Candidate{candidate("shared", "carrying amount of land", 0.7, 1)}}
	keywords := &fakeFullTextIndex{hits: []Candidate{
		candidate("shared", "carrying amount of land", 12.5, 1),
		candidate("k-only", "depreciation schedule for plant", 0.2, 2),
	}}

	engine := NewEngine(&fakeEmbedder{vec: []float32{1}}, vectors, keywords, Options{})
	got := engine.Retrieve(context.Background(), Request{Query: "carrying amount", TopK: 5})

	if len(got) != 2 {
		t.Fatalf("Retrieve() returned %d results, want 2", len(got))
	}
	if got[0].ChunkID != "shared" || got[0].RetrievalTier != TierVector || got[0].Score != 0.7 {
		t.Errorf("merged entry = %+v, want the vector copy", got[0])
	}
}

func TestRetrieve_TiesKeepVectorFirst(t *testing.T) {
	vectors := &fakeVectorIndex{hits: []Candidate{candidate("v", "lease liabilities maturity", 0.5, 1)}}
	keywords := &fakeFullTextIndex{hits: []Candidate{candidate("k", "goodwill impairment testing", 0.5, 2)}}

	engine := NewEngine(&fakeEmbedder{vec: []float32{1}}, vectors, keywords, Options{})
	got := engine.Retrieve(context.Background(), Request{Query: "leases", TopK: 5})

	if len(got) != 2 || got[0].ChunkID != "v" || got[1].ChunkID != "k" {
		t.Errorf("tie order = %+v, want v then k", got)
	}
}

func TestRetrieve_DisableDedup(t *testing.T) {
	text := "The fair value of investment property is INR 500 crores."
	keywords := &fakeFullTextIndex{hits: []Candidate{
		candidate("a", text, 0.9, 1),
		candidate("b", text, 0.8, 1),
		candidate("c", text, 0.7, 1),
		candidate("d", text, 0.6, 1),
	}}
	engine := NewEngine(nil, nil, keywords, Options{})

	deduped := engine.Retrieve(context.Background(), Request{Query: "q", TopK: 3})
	if len(deduped) != 1 {
		t.Errorf("dedup kept %d identical results, want 1", len(deduped))
	}

	raw := engine.Retrieve(context.Background(), Request{Query: "q", TopK: 3, DisableDedup: true})
	if len(raw) != 3 {
		t.Errorf("DisableDedup returned %d results, want 3", len(raw))
	}
}

func TestRetrieve_NearDuplicatesCollapsed(t *testing.T) {
	var hits []Candidate
	distinct := []string{"a", "b", "c", "d", "e", "f"}
	for i, ch := range distinct {
		hits = append(hits, candidate("distinct-"+ch, strings.Repeat(ch, 40), 0.99-float64(i)*0.1, 100+i))
	}
	base := strings.Repeat("a", 40)
	for i := 0; i < 6; i++ {
		dup := base[:38] + strings.Repeat(string(rune('0'+i)), 2)
		hits = append(hits, candidate("dup-"+string(rune('0'+i)), dup, 0.95-float64(i)*0.1, 200+i))
	}

	engine := NewEngine(nil, nil, &fakeFullTextIndex{hits: hits}, Options{})
	got := engine.Retrieve(context.Background(), Request{Query: "q", TopK: 5})

	if len(got) != 5 {
		t.Fatalf("Retrieve() returned %d results, want 5", len(got))
	}
	for i, r := range got {
		if want := "distinct-" + distinct[i]; r.ChunkID != want {
			t.Errorf("result %d = %s, want %s", i, r.ChunkID, want)
		}
	}
}
