package rag

// Tier records which retrieval stage last scored a result.
type Tier string

const (
	TierVector   Tier = "vector"
	TierKeyword  Tier = "keyword"
	TierReranked Tier = "re-ranked"
)

// Filters narrows both retrieval tiers. Empty fields do not filter.
type Filters struct {
	// CompanyID scopes the search to one company's reports.
	CompanyID string `json:"company_id,omitempty"`
	// StatementType is "standalone" or "consolidated".
	StatementType string `json:"statement_type,omitempty"`
	// NoteNumber is an exact note label such as "Note 12".
	NoteNumber string `json:"note_number,omitempty"`
	// SectionTypes matches chunks carrying any of the listed section types.
	SectionTypes []string `json:"section_types,omitempty"`
}

// Request is a retrieval query.
type Request struct {
	// Query is the natural-language question.
	Query string `json:"query"`
	// CompanyID scopes the search to one company.
	CompanyID string `json:"company_id"`
	// TopK is the number of results wanted. Zero selects the engine default.
	TopK int `json:"top_k,omitempty"`
	// Filters restricts candidates in both tiers.
	Filters Filters `json:"filters,omitempty"`
	// DisableDedup skips the diversity stage and only truncates to TopK.
	DisableDedup bool `json:"disable_dedup,omitempty"`
	// SimilarityThreshold overrides the dedup similarity threshold when > 0.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
	// InferFilters fills empty statement type and note number filters from
	// the query text.
	InferFilters bool `json:"infer_filters,omitempty"`
}

// Candidate is one hit returned by an index.
type Candidate struct {
	ChunkID       string
	Text          string
	ChunkType     string
	SectionTypes  []string
	NoteNumber    string
	StatementType string
	PageNumbers   []int
	Score         float64
}

// RetrievalResult is a ranked chunk returned to the caller. Score is only
// meaningful for ordering within one response.
type RetrievalResult struct {
	ChunkID       string   `json:"chunk_id"`
	ChunkText     string   `json:"chunk_text"`
	ChunkType     string   `json:"chunk_type"`
	SectionTypes  []string `json:"section_types"`
	NoteNumber    string   `json:"note_number,omitempty"`
	PageNumbers   []int    `json:"page_numbers"`
	Score         float64  `json:"score"`
	RetrievalTier Tier     `json:"retrieval_tier"`
}

func fromCandidate(c Candidate, tier Tier) RetrievalResult {
	return RetrievalResult{
		ChunkID:       c.ChunkID,
		ChunkText:     c.Text,
		ChunkType:     c.ChunkType,
		SectionTypes:  c.SectionTypes,
		NoteNumber:    c.NoteNumber,
		PageNumbers:   c.PageNumbers,
		Score:         c.Score,
		RetrievalTier: tier,
	}
}
