package indexer

import (
	"strings"

	"finrag/internal/classifier"
	"finrag/internal/notes"
)

// DefaultMaxChunkSize is the byte budget used when none is configured.
const DefaultMaxChunkSize = 2048

// HierarchicalChunker splits annual report pages into retrieval chunks.
// Tables, headings and critical disclosures are kept whole, and the text of
// one financial statement note never shares a chunk with another note.
type HierarchicalChunker struct {
	oracle       classifier.Oracle
	maxChunkSize int
}

// NewHierarchicalChunker creates a chunker. A non-positive maxChunkSize
// selects DefaultMaxChunkSize.
func NewHierarchicalChunker(oracle classifier.Oracle, maxChunkSize int) *HierarchicalChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &HierarchicalChunker{
		oracle:       oracle,
		maxChunkSize: maxChunkSize,
	}
}

// MaxChunkSize returns the configured byte budget.
func (c *HierarchicalChunker) MaxChunkSize() int {
	return c.maxChunkSize
}

// ChunkDocument returns the chunks of pages in document order.
func (c *HierarchicalChunker) ChunkDocument(pages []Page) []Chunk {
	doc := joinPages(pages)

	bounds := notes.MainNotes(doc.text)
	if len(bounds) == 0 {
		var chunks []Chunk
		for _, p := range doc.pages {
			chunks = append(chunks, c.chunkPlain(doc, p.span)...)
		}
		return chunks
	}

	var chunks []Chunk
	for _, b := range bounds {
		s := span{b.Start, b.End}
		if b.IsPreamble() {
			chunks = append(chunks, c.chunkPlain(doc, s)...)
			continue
		}
		chunks = append(chunks, c.chunkNote(doc, s, b.Number, b.Title)...)
	}
	return chunks
}

// chunkPlain handles text outside any note, element by element.
func (c *HierarchicalChunker) chunkPlain(doc document, s span) []Chunk {
	var chunks []Chunk
	for _, el := range extractElements(doc.text, s) {
		chunks = append(chunks, c.chunkElement(doc, el)...)
	}
	return chunks
}

func (c *HierarchicalChunker) chunkElement(doc document, el element) []Chunk {
	text := doc.slice(el.span)
	pages := doc.pagesIn(el.span)

	whole := func(critical bool) []Chunk {
		return []Chunk{newChunk(text, el.kind, pages, critical, el.span)}
	}

	switch el.kind {
	case ChunkTable, ChunkHeading:
		return whole(true)
	case ChunkList:
		if len(text) <= c.maxChunkSize {
			return whole(false)
		}
		return c.fromPacked(doc, ChunkList, packLines(doc.text, listItems(doc.text, el.span), c.maxChunkSize))
	default:
		if c.oracle.IsCritical(text) {
			return whole(true)
		}
		if len(text) <= c.maxChunkSize {
			return whole(false)
		}
		return c.fromPacked(doc, ChunkParagraph, packSentences(doc.text, sentences(doc.text, el.span), c.maxChunkSize))
	}
}

func (c *HierarchicalChunker) fromPacked(doc document, kind ChunkType, pieces []packed) []Chunk {
	chunks := make([]Chunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, newChunk(p.text, kind, doc.pagesIn(p.span), false, p.span))
	}
	return chunks
}

// noteContext carries what every chunk of one main note shares.
type noteContext struct {
	doc    document
	number string
	title  string
	header string
	pages  []int
}

func (n noteContext) chunk(body span, kind ChunkType, level int, withHeader bool) Chunk {
	bodyText := n.doc.slice(body)
	text := bodyText
	if withHeader {
		text = n.header + bodyText
	}
	ch := newChunk(text, kind, n.pages, true, body)
	ch.NoteNumber = n.number
	ch.NoteTitle = n.title
	ch.HierarchyLevel = level
	if kind != ChunkNoteComplete && kind != ChunkNoteHeader {
		ch.ParentNote = n.number
	}
	detectContent(bodyText).apply(&ch)
	return ch
}

func noteHeader(number, title string) string {
	if title == "" {
		return number + "\n\n"
	}
	return number + " - " + title + "\n\n"
}

func (c *HierarchicalChunker) chunkNote(doc document, s span, number, title string) []Chunk {
	body := trim(doc.text, s)
	if body.empty() {
		return nil
	}

	n := noteContext{
		doc:    doc,
		number: number,
		title:  title,
		header: noteHeader(number, title),
		pages:  doc.pagesIn(body),
	}

	if body.len() <= c.maxChunkSize {
		ch := n.chunk(body, ChunkNoteComplete, 0, false)
		ch.IsCompleteNote = true
		return []Chunk{ch}
	}

	subs := notes.SubNotes(doc.slice(body), number)
	if len(subs) == 0 {
		return c.packNote(n, body)
	}

	var chunks []Chunk
	if lead := trim(doc.text, span{body.start, body.start + subs[0].Start}); !lead.empty() {
		if lead.len() <= c.maxChunkSize {
			chunks = append(chunks, n.chunk(lead, ChunkNoteHeader, 0, false))
		} else {
			chunks = append(chunks, c.packNote(n, lead)...)
		}
	}

	for _, sub := range subs {
		subSpan := trim(doc.text, span{body.start + sub.Start, body.start + sub.End})
		if subSpan.empty() {
			continue
		}
		if len(n.header)+subSpan.len() <= c.maxChunkSize {
			ch := n.chunk(subSpan, ChunkNoteSection, 1, true)
			ch.SubNote = sub.Number
			chunks = append(chunks, ch)
			continue
		}
		chunks = append(chunks, c.chunkSubNote(n, subSpan, sub.Number)...)
	}
	return chunks
}

// chunkSubNote splits a sub-note that does not fit, preferring its "(a)"
// sub-sections.
func (c *HierarchicalChunker) chunkSubNote(n noteContext, s span, subNote string) []Chunk {
	text := n.doc.slice(s)
	secs := notes.SubSections(text)

	if len(secs) == 0 {
		if len(n.header)+s.len() > 2*c.maxChunkSize {
			return c.noteParagraphs(n, s, subNote)
		}
		ch := n.chunk(s, ChunkNoteSection, 1, true)
		ch.SubNote = subNote
		return []Chunk{ch}
	}

	var chunks []Chunk
	if lead := trim(n.doc.text, span{s.start, s.start + secs[0].Start}); !lead.empty() {
		ch := n.chunk(lead, ChunkNoteSection, 1, true)
		ch.SubNote = subNote
		chunks = append(chunks, ch)
	}

	for _, sec := range secs {
		secSpan := trim(n.doc.text, span{s.start + sec.Start, s.start + sec.End})
		if secSpan.empty() {
			continue
		}
		if len(n.header)+secSpan.len() > c.maxChunkSize {
			if split := c.chunkSubSubSections(n, secSpan, subNote, sec.Number); split != nil {
				chunks = append(chunks, split...)
				continue
			}
		}
		ch := n.chunk(secSpan, ChunkNoteSection, 2, true)
		ch.SubNote = subNote
		ch.SubSection = sec.Number
		chunks = append(chunks, ch)
	}
	return chunks
}

// chunkSubSubSections splits an oversized sub-section on its roman-numbered
// items. It returns nil when there are none.
func (c *HierarchicalChunker) chunkSubSubSections(n noteContext, s span, subNote, subSection string) []Chunk {
	items := notes.SubSubSections(n.doc.slice(s))
	if len(items) == 0 {
		return nil
	}

	var chunks []Chunk
	if lead := trim(n.doc.text, span{s.start, s.start + items[0].Start}); !lead.empty() {
		ch := n.chunk(lead, ChunkNoteSection, 2, true)
		ch.SubNote = subNote
		ch.SubSection = subSection
		chunks = append(chunks, ch)
	}
	for _, item := range items {
		itemSpan := trim(n.doc.text, span{s.start + item.Start, s.start + item.End})
		if itemSpan.empty() {
			continue
		}
		ch := n.chunk(itemSpan, ChunkNoteSection, 3, true)
		ch.SubNote = subNote
		ch.SubSection = subSection
		ch.SubSubSection = item.Number
		chunks = append(chunks, ch)
	}
	return chunks
}

// noteParagraphs splits a very large sub-note element by element. Tables and
// critical paragraphs stay whole; other text is sentence-packed into
// non-critical pieces. Every piece carries the note header.
func (c *HierarchicalChunker) noteParagraphs(n noteContext, s span, subNote string) []Chunk {
	// A long title shrinks the budget but is never dropped.
	budget := max(c.maxChunkSize-len(n.header), c.maxChunkSize/4)

	var chunks []Chunk
	for _, el := range extractElements(n.doc.text, s) {
		switch {
		case el.kind == ChunkTable:
			ch := n.chunk(el.span, ChunkNoteTable, 2, true)
			ch.SubNote = subNote
			chunks = append(chunks, ch)
			continue
		case el.kind == ChunkParagraph && c.oracle.IsCritical(n.doc.slice(el.span)):
			ch := n.chunk(el.span, ChunkNoteParagraph, 2, true)
			ch.SubNote = subNote
			chunks = append(chunks, ch)
			continue
		}
		for _, p := range packSentences(n.doc.text, sentences(n.doc.text, el.span), budget) {
			ch := newChunk(n.header+p.text, ChunkNoteParagraph, n.pages, false, p.span)
			ch.NoteNumber = n.number
			ch.NoteTitle = n.title
			ch.SubNote = subNote
			ch.ParentNote = n.number
			ch.HierarchyLevel = 2
			detectContent(p.text).apply(&ch)
			chunks = append(chunks, ch)
		}
	}
	return chunks
}

// packNote groups a note's elements greedily. The first chunk begins with
// the note's own marker line, so only the chunks after it get the header
// prepended. A group made only of tables becomes a
// note_table chunk.
func (c *HierarchicalChunker) packNote(n noteContext, s span) []Chunk {
	elems := extractElements(n.doc.text, s)
	if len(elems) == 0 {
		return nil
	}

	var chunks []Chunk
	var group []element
	size := 0
	flush := func() {
		if len(group) == 0 {
			return
		}
		kind := ChunkNoteTable
		bodies := make([]string, len(group))
		for i, g := range group {
			bodies[i] = n.doc.slice(g.span)
			if g.kind != ChunkTable {
				kind = ChunkNoteMixed
			}
		}
		body := strings.Join(bodies, "\n\n")
		src := span{group[0].start, group[len(group)-1].end}

		text := body
		if len(chunks) > 0 {
			text = n.header + body
		}
		ch := newChunk(text, kind, n.pages, true, src)
		ch.NoteNumber = n.number
		ch.NoteTitle = n.title
		ch.ParentNote = n.number
		detectContent(body).apply(&ch)
		chunks = append(chunks, ch)
	}

	for _, el := range elems {
		headerLen := 0
		if len(chunks) > 0 {
			headerLen = len(n.header)
		}
		if len(group) > 0 && headerLen+size+2+el.len() > c.maxChunkSize {
			flush()
			group, size = nil, 0
		}
		if len(group) > 0 {
			size += 2
		}
		group = append(group, el)
		size += el.len()
	}
	flush()
	return chunks
}

func newChunk(text string, kind ChunkType, pages []int, critical bool, src span) Chunk {
	return Chunk{
		Text:        text,
		ChunkType:   kind,
		PageNumbers: pages,
		CharCount:   len(text),
		IsCritical:  critical,
		SourceStart: src.start,
		SourceEnd:   src.end,
	}
}
