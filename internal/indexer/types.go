package indexer

// ChunkType identifies the strategy that produced a chunk.
type ChunkType string

const (
	ChunkTable         ChunkType = "table"
	ChunkParagraph     ChunkType = "paragraph"
	ChunkList          ChunkType = "list"
	ChunkHeading       ChunkType = "heading"
	ChunkNoteHeader    ChunkType = "note_header"
	ChunkNoteComplete  ChunkType = "note_complete"
	ChunkNoteSection   ChunkType = "note_section"
	ChunkNoteMixed     ChunkType = "note_mixed"
	ChunkNoteTable     ChunkType = "note_table"
	ChunkNoteParagraph ChunkType = "note_paragraph"
)

// IsNote reports whether t was produced by the note-aware path.
func (t ChunkType) IsNote() bool {
	switch t {
	case ChunkNoteHeader, ChunkNoteComplete, ChunkNoteSection, ChunkNoteMixed, ChunkNoteTable, ChunkNoteParagraph:
		return true
	}
	return false
}

// Page is the extracted text of one report page.
type Page struct {
	Number int
	Text   string
}

// Chunk is a retrievable unit of report text.
type Chunk struct {
	Text        string
	ChunkType   ChunkType
	PageNumbers []int
	CharCount   int  // len(Text) in bytes
	IsCritical  bool // Must never be split or merged away

	// Note hierarchy. Level 0 is the main note, 1 a sub-note ("12.1"),
	// 2 a sub-section ("(a)") and 3 a sub-sub-section ("(i)").
	NoteNumber     string
	SubNote        string
	SubSection     string
	SubSubSection  string
	NoteTitle      string
	ParentNote     string
	HierarchyLevel int
	IsCompleteNote bool

	ContentTypes  []string // Ordered subset of table, numerical, paragraph
	HasSubjective bool
	HasObjective  bool

	// SourceStart and SourceEnd delimit the range of the joined document the
	// chunk was cut from. Prepended note headers are not part of the range.
	SourceStart int
	SourceEnd   int
}
