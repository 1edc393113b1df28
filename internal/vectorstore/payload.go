package vectorstore

import (
	"finrag/internal/rag"
	"finrag/internal/storage"
)

// Payload keys stored with every chunk point.
const (
	payloadCompanyID     = "company_id"
	payloadDocumentID    = "document_id"
	payloadChunkIndex    = "chunk_index"
	payloadChunkType     = "chunk_type"
	payloadText          = "text"
	payloadPageNumbers   = "page_numbers"
	payloadNoteNumber    = "note_number"
	payloadNoteNumbers   = "note_numbers"
	payloadStatementType = "statement_type"
	payloadSectionTypes  = "section_types"
	payloadIsCritical    = "is_critical"
)

// keywordPayloadFields get a keyword payload index when the collection is created.
var keywordPayloadFields = []string{payloadCompanyID, payloadStatementType, payloadNoteNumbers, payloadSectionTypes}

// chunkPayload is the payload stored with a chunk's point. note_numbers
// carries the sub-note label too so a note filter matches either.
func chunkPayload(c *storage.ChunkRecord) map[string]any {
	noteNumbers := []any{}
	if c.NoteNumber != "" {
		noteNumbers = append(noteNumbers, c.NoteNumber)
	}
	if c.SubNote != "" {
		noteNumbers = append(noteNumbers, "Note "+c.SubNote)
	}

	pages := make([]any, len(c.PageNumbers))
	for n, p := range c.PageNumbers {
		pages[n] = p
	}
	sections := make([]any, len(c.SectionTypes))
	for n, s := range c.SectionTypes {
		sections[n] = s
	}

	return map[string]any{
		payloadCompanyID:     c.CompanyID,
		payloadDocumentID:    c.DocumentID,
		payloadChunkIndex:    c.ChunkIndex,
		payloadChunkType:     c.ChunkType,
		payloadText:          c.Text,
		payloadPageNumbers:   pages,
		payloadNoteNumber:    c.NoteNumber,
		payloadNoteNumbers:   noteNumbers,
		payloadStatementType: c.StatementType,
		payloadSectionTypes:  sections,
		payloadIsCritical:    c.IsCritical,
	}
}

func candidateFromPayload(r ScoredPoint) rag.Candidate {
	c := rag.Candidate{
		ChunkID:       r.PointID,
		Text:          stringField(r.Payload, payloadText),
		ChunkType:     stringField(r.Payload, payloadChunkType),
		NoteNumber:    stringField(r.Payload, payloadNoteNumber),
		StatementType: stringField(r.Payload, payloadStatementType),
		Score:         float64(r.Score),
	}
	if list, ok := r.Payload[payloadSectionTypes].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				c.SectionTypes = append(c.SectionTypes, s)
			}
		}
	}
	if list, ok := r.Payload[payloadPageNumbers].([]any); ok {
		for _, v := range list {
			switch p := v.(type) {
			case int64:
				c.PageNumbers = append(c.PageNumbers, int(p))
			case float64:
				c.PageNumbers = append(c.PageNumbers, int(p))
			}
		}
	}
	return c
}

func stringField(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}
