package rag

import (
	"regexp"

	"finrag/internal/sections"
)

var queryNotePattern = regexp.MustCompile(`(?i)(?:note|notes?)\s+(?:no\.?\s*)?(\d+(?:\.\d+)?)`)

// InferFilters fills the statement type and note number of f from query
// when they are empty. Explicit filters always win.
func InferFilters(query string, f Filters) Filters {
	if f.StatementType == "" {
		f.StatementType = sections.InferStatementType(query)
	}
	if f.NoteNumber == "" {
		if m := queryNotePattern.FindStringSubmatch(query); m != nil {
			f.NoteNumber = "Note " + m[1]
		}
	}
	return f
}
