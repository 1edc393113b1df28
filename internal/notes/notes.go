// Package notes finds the hierarchical "NOTE n / n.m / (a) / (i)" structure of
// financial statement notes in plain text.
//
// Every function is pure: it takes immutable text and returns half-open byte
// ranges into that text. Absence of structure yields an empty result, never an
// error.
package notes

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	mainNotePattern      = regexp.MustCompile(`(?im)^[ \t]*NOTE[ \t]+(\d+)[ \t]*[-\x{2013}\x{2014}:]*[ \t]*([A-Z][A-Za-z \t,&()]*)?`)
	subNotePattern       = regexp.MustCompile(`(?m)^[ \t]*(\d+)\.(\d+)[ \t]+([A-Z][A-Za-z \t,&()]*)`)
	subSectionPattern    = regexp.MustCompile(`(?m)^[ \t]*\(([a-z])\)[ \t]+([A-Z][A-Za-z \t,&()]*)`)
	subSubSectionPattern = regexp.MustCompile(`(?m)^[ \t]*\((i{1,3}|iv|v|vi{1,3}|ix|x)\)[ \t]+([A-Z][A-Za-z \t,&()]*)`)

	noteMentionPattern = regexp.MustCompile(`(?i)\bNOTE\s+\d+`)
	notesToPattern     = regexp.MustCompile(`(?i)Notes\s+(?:to|on)\s+`)
)

// Boundary is a half-open [Start, End) range of a structural unit.
type Boundary struct {
	// Number identifies the unit: "Note 12", "12.1", "(a)" or "(i)".
	// It is empty for the preamble that precedes the first main note.
	Number string
	Title  string
	Start  int
	End    int
}

// IsPreamble reports whether b covers material before the first note marker.
func (b Boundary) IsPreamble() bool {
	return b.Number == ""
}

// Len returns the byte length of the range.
func (b Boundary) Len() int {
	return b.End - b.Start
}

// Slice returns the part of text covered by b.
func (b Boundary) Slice(text string) string {
	return text[b.Start:b.End]
}

// MainNotes returns boundaries that tile the whole of text: boundary i ends
// where boundary i+1 starts and the last one ends at len(text). When the first
// note marker is not at offset 0 a preamble boundary (empty Number) covers the
// leading material. A document without markers yields nil.
func MainNotes(text string) []Boundary {
	matches := mainNotePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	bounds := make([]Boundary, 0, len(matches)+1)
	if matches[0][0] > 0 {
		bounds = append(bounds, Boundary{Start: 0})
	}
	for _, m := range matches {
		bounds = append(bounds, Boundary{
			Number: "Note " + text[m[2]:m[3]],
			Title:  group(text, m, 2),
			Start:  m[0],
		})
	}
	closeRanges(bounds, len(text))
	return bounds
}

// SubNotes returns the "n.m" sub-notes of a single note's text. Only markers
// whose n equals the enclosing note's number are accepted, so a stray "5.2"
// inside Note 12 is ignored. noteNumber may be "Note 12" or "12".
func SubNotes(noteText, noteNumber string) []Boundary {
	mainNum := strings.TrimSpace(strings.TrimPrefix(noteNumber, "Note "))

	var subs []Boundary
	for _, m := range subNotePattern.FindAllStringSubmatchIndex(noteText, -1) {
		major := noteText[m[2]:m[3]]
		if !sameNumber(major, mainNum) {
			continue
		}
		subs = append(subs, Boundary{
			Number: major + "." + noteText[m[4]:m[5]],
			Title:  group(noteText, m, 3),
			Start:  m[0],
		})
	}
	closeRanges(subs, len(noteText))
	return subs
}

// SubSections returns "(a)" style sub-sections of text. The letters i, v and x
// are only taken as sub-sections when they continue the alphabetic sequence
// (h→i, u→v, w→x); otherwise they are left to SubSubSections.
func SubSections(text string) []Boundary {
	var secs []Boundary
	prev := byte(0)
	for _, m := range subSectionPattern.FindAllStringSubmatchIndex(text, -1) {
		letter := text[m[2]]
		if isRomanLetter(letter) && prev+1 != letter {
			continue
		}
		secs = append(secs, Boundary{
			Number: "(" + string(letter) + ")",
			Title:  group(text, m, 2),
			Start:  m[0],
		})
		prev = letter
	}
	closeRanges(secs, len(text))
	return secs
}

// SubSubSections returns "(i)".."(x)" roman-numbered items of text.
func SubSubSections(text string) []Boundary {
	var secs []Boundary
	for _, m := range subSubSectionPattern.FindAllStringSubmatchIndex(text, -1) {
		secs = append(secs, Boundary{
			Number: "(" + text[m[2]:m[3]] + ")",
			Title:  group(text, m, 2),
			Start:  m[0],
		})
	}
	closeRanges(secs, len(text))
	return secs
}

// IsNoteSection reports whether text looks like part of the notes to the
// financial statements.
func IsNoteSection(text string) bool {
	return noteMentionPattern.MatchString(text) || notesToPattern.MatchString(text)
}

// closeRanges sets every End to the next Start, and the last End to total.
func closeRanges(bounds []Boundary, total int) {
	for i := range bounds {
		if i < len(bounds)-1 {
			bounds[i].End = bounds[i+1].Start
		} else {
			bounds[i].End = total
		}
	}
}

// group returns the trimmed text of submatch n, or "" when it did not participate.
func group(text string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return strings.TrimSpace(text[m[2*n]:m[2*n+1]])
}

func sameNumber(a, b string) bool {
	if a == b {
		return true
	}
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	return errA == nil && errB == nil && x == y
}

func isRomanLetter(c byte) bool {
	return c == 'i' || c == 'v' || c == 'x'
}
