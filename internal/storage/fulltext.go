package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"finrag/internal/contextutil"
	"finrag/internal/rag"
)

const (
	lexicalLengthScale = 10.0
	noteTitleBonus     = 0.1
	// ftsCandidatePool bounds how many MATCH rows are scored per query.
	ftsCandidatePool = 200
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {}, "what": {}, "how": {},
}

// FullTextIndex answers keyword queries from the chunks_fts table.
type FullTextIndex struct {
	db *sql.DB
}

var _ rag.FullTextIndex = (*FullTextIndex)(nil)

// NewFullTextIndex creates a FullTextIndex over a migrated database.
func NewFullTextIndex(db *sql.DB) *FullTextIndex {
	return &FullTextIndex{db: db}
}

// TopK returns the k chunks that best match query. Exact numbers such as
// "1,504.69" are matched as phrases so their digits must appear together.
//
// MATCH rows are unranked and capped, so chunks containing one of the
// query's numbers are gathered by their own MATCH first.
func (f *FullTextIndex) TopK(ctx context.Context, query string, k int, filters rag.Filters) ([]rag.Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	match := matchExpression(query)
	if match == "" {
		return nil, nil
	}
	limit := max(k*10, ftsCandidatePool)

	var chunks []*ChunkRecord
	seen := make(map[string]struct{})
	for _, m := range []string{numericMatchExpression(query), match} {
		if m == "" {
			continue
		}
		found, err := f.matchChunks(ctx, m, filters, limit)
		if err != nil {
			return nil, err
		}
		for _, chunk := range found {
			if _, ok := seen[chunk.ID]; ok {
				continue
			}
			seen[chunk.ID] = struct{}{}
			chunks = append(chunks, chunk)
		}
	}

	queryTokens := filterStopwords(tokenize(query))
	candidates := make([]rag.Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, chunk.Candidate(lexicalScore(queryTokens, chunk.Text, chunk.NoteTitle)))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	logger.DebugContext(ctx, "full-text search completed", "match", match, "k", k, "pool", len(chunks), "results", len(candidates))
	return candidates, nil
}

// matchChunks runs one MATCH with every filter applied in SQL, so the limit
// only ever cuts rows that would have been eligible.
func (f *FullTextIndex) matchChunks(ctx context.Context, match string, filters rag.Filters, limit int) ([]*ChunkRecord, error) {
	query := `SELECT ` + qualifiedChunkColumns("c.") + `
		 FROM chunks_fts JOIN chunks c ON c.seq = chunks_fts.docid
		 WHERE chunks_fts MATCH ?
		 AND (? = '' OR c.company_id = ?)
		 AND (? = '' OR c.statement_type = ?)
		 AND (? = '' OR c.note_number = ? OR ('Note ' || c.sub_note) = ?)`
	args := []any{
		match,
		filters.CompanyID, filters.CompanyID,
		filters.StatementType, filters.StatementType,
		filters.NoteNumber, filters.NoteNumber, filters.NoteNumber,
	}
	if len(filters.SectionTypes) > 0 {
		query += `
		 AND EXISTS (SELECT 1 FROM json_each(c.section_types) WHERE json_each.value IN (?` +
			strings.Repeat(", ?", len(filters.SectionTypes)-1) + `))`
		for _, st := range filters.SectionTypes {
			args = append(args, st)
		}
	}
	query += `
		 LIMIT ?`
	args = append(args, limit)

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query full-text index: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []*ChunkRecord
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return chunks, nil
}

// matchExpression turns free text into an FTS4 MATCH expression: one quoted
// term or phrase per whitespace-separated word, joined with OR.
func matchExpression(query string) string {
	seen := make(map[string]struct{})
	var terms []string
	for _, field := range strings.Fields(query) {
		tokens := filterStopwords(tokenize(field))
		if len(tokens) == 0 {
			continue
		}
		term := `"` + strings.Join(tokens, " ") + `"`
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return strings.Join(terms, " OR ")
}

// numericMatchExpression is matchExpression restricted to the words that
// contain a digit. It is empty when the query has no numbers.
func numericMatchExpression(query string) string {
	var numeric []string
	for _, field := range strings.Fields(query) {
		if strings.IndexFunc(field, unicode.IsDigit) >= 0 {
			numeric = append(numeric, field)
		}
	}
	return matchExpression(strings.Join(numeric, " "))
}

// lexicalScore is the number of query-token occurrences in the chunk scaled
// by chunk length, plus a bonus per query token found in the note title.
func lexicalScore(queryTokens []string, chunkText, noteTitle string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	chunkTokens := tokenize(chunkText)
	if len(chunkTokens) == 0 {
		return 0
	}

	chunkFreq := make(map[string]int, len(chunkTokens))
	for _, token := range chunkTokens {
		chunkFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += chunkFreq[token]
	}

	score := float64(rawMatches) / (1 + float64(len(chunkTokens))) * lexicalLengthScale

	if noteTitle != "" {
		titleSet := make(map[string]struct{})
		for _, token := range tokenize(noteTitle) {
			titleSet[token] = struct{}{}
		}
		var titleMatches int
		for _, token := range queryTokens {
			if _, ok := titleSet[token]; ok {
				titleMatches++
			}
		}
		score += float64(titleMatches) * noteTitleBonus
	}

	return score
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func qualifiedChunkColumns(prefix string) string {
	cols := strings.Split(chunkColumns, ",")
	for i, c := range cols {
		cols[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
