package indexer

import (
	"regexp"
	"strings"
)

var (
	blankLinePattern = regexp.MustCompile(`\n\s*\n`)
	headingPattern   = regexp.MustCompile(`(?m)^[A-Z\s]{10,}$|^NOTE\s+\d+`)
	tablePattern     = regexp.MustCompile(`(?m)(?:^|\n)(?:\s*\|.*\|.*$|\s*[-+]+\s*$)`)
	listPattern      = regexp.MustCompile(`(?m)(?:^|\n)\s*(?:\d+\.|[•\-*])\s+`)
	listItemPattern  = regexp.MustCompile(`(?m)^[ \t]*(?:\d+\.|[•\-*])\s+`)
	sentenceEnd      = regexp.MustCompile(`[.!?]\s+`)
)

const maxHeadingLen = 100

// element is a blank-line separated block of text.
type element struct {
	kind ChunkType
	span
}

// extractElements splits s on blank lines and classifies each non-empty block.
func extractElements(src string, s span) []element {
	var elems []element
	add := func(r span) {
		r = trim(src, r)
		if r.empty() {
			return
		}
		elems = append(elems, element{kind: classifyElement(src[r.start:r.end]), span: r})
	}

	cur := s.start
	for _, m := range blankLinePattern.FindAllStringIndex(src[s.start:s.end], -1) {
		add(span{cur, s.start + m[0]})
		cur = s.start + m[1]
	}
	add(span{cur, s.end})
	return elems
}

func classifyElement(text string) ChunkType {
	switch {
	case len(text) < maxHeadingLen && headingPattern.MatchString(text):
		return ChunkHeading
	case tablePattern.MatchString(text):
		return ChunkTable
	case listPattern.MatchString(text):
		return ChunkList
	default:
		return ChunkParagraph
	}
}

// sentences splits s after every [.!?] that is followed by whitespace.
func sentences(src string, s span) []span {
	var out []span
	cur := s.start
	for _, m := range sentenceEnd.FindAllStringIndex(src[s.start:s.end], -1) {
		if r := trim(src, span{cur, s.start + m[0] + 1}); !r.empty() {
			out = append(out, r)
		}
		cur = s.start + m[1]
	}
	if r := trim(src, span{cur, s.end}); !r.empty() {
		out = append(out, r)
	}
	return out
}

// listItems splits s at every line that starts with a bullet or numeral.
func listItems(src string, s span) []span {
	var out []span
	cur := s.start
	for _, m := range listItemPattern.FindAllStringIndex(src[s.start:s.end], -1) {
		at := s.start + m[0]
		if at == cur {
			continue
		}
		if r := trim(src, span{cur, at}); !r.empty() {
			out = append(out, r)
		}
		cur = at
	}
	if r := trim(src, span{cur, s.end}); !r.empty() {
		out = append(out, r)
	}
	return out
}

// packed is a run of source pieces joined into one chunk text.
type packed struct {
	text string
	span // From the first piece's start to the last piece's end.
}

// packSentences greedily joins sentences with a space up to limit bytes. A
// new piece repeats the previous sentence when it still fits. Sentences
// longer than limit are hard split first.
func packSentences(src string, parts []span, limit int) []packed {
	parts = splitOversized(src, parts, limit)

	var out []packed
	var cur []span
	size := 0
	flush := func() {
		if len(cur) > 0 {
			out = append(out, join(src, cur, " "))
		}
	}

	for i, p := range parts {
		if len(cur) == 0 || size+1+p.len() <= limit {
			if len(cur) > 0 {
				size++
			}
			cur = append(cur, p)
			size += p.len()
			continue
		}

		flush()
		prev := parts[i-1]
		if prev.len()+1+p.len() <= limit {
			cur = []span{prev, p}
			size = prev.len() + 1 + p.len()
		} else {
			cur = []span{p}
			size = p.len()
		}
	}
	flush()
	return out
}

// packLines greedily joins list items with a newline up to limit bytes.
func packLines(src string, parts []span, limit int) []packed {
	parts = splitOversized(src, parts, limit)

	var out []packed
	var cur []span
	size := 0
	for _, p := range parts {
		if len(cur) > 0 && size+1+p.len() > limit {
			out = append(out, join(src, cur, "\n"))
			cur, size = nil, 0
		}
		if len(cur) > 0 {
			size++
		}
		cur = append(cur, p)
		size += p.len()
	}
	if len(cur) > 0 {
		out = append(out, join(src, cur, "\n"))
	}
	return out
}

func splitOversized(src string, parts []span, limit int) []span {
	out := make([]span, 0, len(parts))
	for _, p := range parts {
		if p.len() > limit {
			out = append(out, hardSplit(src, p, limit)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

func join(src string, parts []span, sep string) packed {
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = src[p.start:p.end]
	}
	return packed{
		text: strings.Join(texts, sep),
		span: span{parts[0].start, parts[len(parts)-1].end},
	}
}
