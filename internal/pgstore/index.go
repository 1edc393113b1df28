package pgstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"finrag/internal/rag"
)

type candidateRow struct {
	ID            string         `db:"id"`
	Content       string         `db:"content"`
	ChunkType     string         `db:"chunk_type"`
	PageNumbers   pq.Int64Array  `db:"page_numbers"`
	NoteNumber    string         `db:"note_number"`
	StatementType string         `db:"statement_type"`
	SectionTypes  pq.StringArray `db:"section_types"`
	Score         float64        `db:"score"`
}

func (r candidateRow) candidate() rag.Candidate {
	pages := make([]int, len(r.PageNumbers))
	for i, p := range r.PageNumbers {
		pages[i] = int(p)
	}
	return rag.Candidate{
		ChunkID:       r.ID,
		Text:          r.Content,
		ChunkType:     r.ChunkType,
		SectionTypes:  []string(r.SectionTypes),
		NoteNumber:    r.NoteNumber,
		StatementType: r.StatementType,
		PageNumbers:   pages,
		Score:         r.Score,
	}
}

// filterClause holds the shared metadata filters; the query argument is $1
// and k is $6.
const filterClause = `
	AND ($2 = '' OR company_id = $2)
	AND ($3 = '' OR statement_type = $3)
	AND ($4 = '' OR note_number = $4 OR 'Note ' || sub_note = $4)
	AND (cardinality($5::text[]) = 0 OR section_types && $5::text[])`

const candidateColumns = `id, content, chunk_type, page_numbers, note_number, statement_type, section_types`

// VectorIndex is the pgvector similarity tier.
type VectorIndex struct {
	db *sqlx.DB
}

var _ rag.VectorIndex = (*VectorIndex)(nil)

// VectorIndex returns the similarity search view of the store.
func (s *Store) VectorIndex() *VectorIndex {
	return &VectorIndex{db: s.db}
}

// TopK returns the k nearest chunks by cosine distance. Score is 1 - distance.
func (v *VectorIndex) TopK(ctx context.Context, vec []float32, k int, filters rag.Filters) ([]rag.Candidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	query := `SELECT ` + candidateColumns + `, 1 - (embedding <=> $1) AS score
		FROM document_chunks
		WHERE embedding IS NOT NULL` + filterClause + `
		ORDER BY embedding <=> $1
		LIMIT $6`

	var rows []candidateRow
	err := v.db.SelectContext(ctx, &rows, query,
		pgvector.NewVector(vec),
		filters.CompanyID, filters.StatementType, filters.NoteNumber, stringArray(filters.SectionTypes),
		k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}
	return toCandidates(rows), nil
}

// FullTextIndex is the ts_rank keyword tier.
type FullTextIndex struct {
	db *sqlx.DB
}

var _ rag.FullTextIndex = (*FullTextIndex)(nil)

// FullTextIndex returns the keyword search view of the store.
func (s *Store) FullTextIndex() *FullTextIndex {
	return &FullTextIndex{db: s.db}
}

// TopK returns the k chunks with the highest ts_rank for query.
func (f *FullTextIndex) TopK(ctx context.Context, query string, k int, filters rag.Filters) ([]rag.Candidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	stmt := `SELECT ` + candidateColumns + `, ts_rank(content_tsv, plainto_tsquery('english', $1)) AS score
		FROM document_chunks
		WHERE content_tsv @@ plainto_tsquery('english', $1)` + filterClause + `
		ORDER BY score DESC
		LIMIT $6`

	var rows []candidateRow
	err := f.db.SelectContext(ctx, &rows, stmt,
		query,
		filters.CompanyID, filters.StatementType, filters.NoteNumber, stringArray(filters.SectionTypes),
		k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search full text: %w", err)
	}
	return toCandidates(rows), nil
}

func toCandidates(rows []candidateRow) []rag.Candidate {
	out := make([]rag.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.candidate())
	}
	return out
}
