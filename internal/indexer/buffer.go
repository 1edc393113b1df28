package indexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const pageSeparator = "\n\n"

// span is a half-open byte range into the document buffer.
type span struct {
	start, end int
}

func (s span) len() int { return s.end - s.start }

func (s span) empty() bool { return s.end <= s.start }

type pageSpan struct {
	number int
	span
}

// document is the concatenation of all pages with the byte range each page
// occupies inside it.
type document struct {
	text  string
	pages []pageSpan
}

func joinPages(pages []Page) document {
	var b strings.Builder
	spans := make([]pageSpan, 0, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString(pageSeparator)
		}
		start := b.Len()
		b.WriteString(p.Text)
		spans = append(spans, pageSpan{number: p.Number, span: span{start, b.Len()}})
	}
	return document{text: b.String(), pages: spans}
}

// JoinText returns the document buffer that chunk source offsets refer to.
func JoinText(pages []Page) string {
	return joinPages(pages).text
}

func (d document) slice(s span) string {
	return d.text[s.start:s.end]
}

// pagesIn returns the numbers of all pages overlapping s, in page order.
func (d document) pagesIn(s span) []int {
	var nums []int
	for _, p := range d.pages {
		if s.end <= p.start || s.start >= p.end {
			continue
		}
		nums = append(nums, p.number)
	}
	if len(nums) == 0 {
		if n, ok := d.pageAt(s.start); ok {
			nums = []int{n}
		}
	}
	return nums
}

// pageAt returns the last page starting at or before pos.
func (d document) pageAt(pos int) (int, bool) {
	found := false
	num := 0
	for _, p := range d.pages {
		if p.start > pos {
			break
		}
		num, found = p.number, true
	}
	if !found && len(d.pages) > 0 {
		return d.pages[0].number, true
	}
	return num, found
}

// trim shrinks s so it excludes leading and trailing whitespace of src.
func trim(src string, s span) span {
	t := src[s.start:s.end]
	left := len(t) - len(strings.TrimLeftFunc(t, unicode.IsSpace))
	right := len(strings.TrimRightFunc(t, unicode.IsSpace))
	if right <= left {
		return span{s.start, s.start}
	}
	return span{s.start + left, s.start + right}
}

// hardSplit cuts s into trimmed pieces of at most limit bytes, breaking at
// the last whitespace before the limit and never inside a UTF-8 sequence.
func hardSplit(src string, s span, limit int) []span {
	if limit < 1 {
		limit = 1
	}
	s = trim(src, s)

	var out []span
	for s.len() > limit {
		cut := s.start + limit
		for cut > s.start && !utf8.RuneStart(src[cut]) {
			cut--
		}
		if cut == s.start {
			_, size := utf8.DecodeRuneInString(src[s.start:])
			cut = s.start + size
		}

		piece := span{s.start, cut}
		if brk := strings.LastIndexFunc(src[s.start:cut], unicode.IsSpace); brk > 0 {
			piece.end = s.start + brk
		}
		if p := trim(src, piece); !p.empty() {
			out = append(out, p)
		}
		s = trim(src, span{piece.end, s.end})
	}
	if !s.empty() {
		out = append(out, s)
	}
	return out
}
