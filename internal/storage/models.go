package storage

import (
	"encoding/json"
	"time"

	"finrag/internal/rag"
)

// DocumentRecord is one ingested report.
type DocumentRecord struct {
	ID         string // UUID
	CompanyID  string
	SourcePath string // Path or name the pages were loaded from
	Title      string
	Hash       string // SHA256 hex string of the page texts
	PageCount  int
	UpdatedAt  time.Time
}

// ChunkRecord is a stored chunk with its classification. The ID is shared
// with the vector index point.
type ChunkRecord struct {
	ID             string
	DocumentID     string
	CompanyID      string
	ChunkIndex     int
	ChunkType      string
	Text           string
	PageNumbers    []int
	CharCount      int
	IsCritical     bool
	NoteNumber     string
	SubNote        string
	NoteTitle      string
	ParentNote     string
	HierarchyLevel int
	StatementType  string
	SectionTypes   []string
	ContentTypes   []string
	Confidence     float64
}

// Candidate converts the record into a retrieval candidate with score.
func (c *ChunkRecord) Candidate(score float64) rag.Candidate {
	return rag.Candidate{
		ChunkID:       c.ID,
		Text:          c.Text,
		ChunkType:     c.ChunkType,
		SectionTypes:  c.SectionTypes,
		NoteNumber:    c.NoteNumber,
		StatementType: c.StatementType,
		PageNumbers:   c.PageNumbers,
		Score:         score,
	}
}

// ChunkSize is the per-chunk data needed for index statistics.
type ChunkSize struct {
	CharCount  int
	IsCritical bool
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
