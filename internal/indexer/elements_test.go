package indexer

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestJoinPages(t *testing.T) {
	doc := joinPages([]Page{
		{Number: 10, Text: "first"},
		{Number: 11, Text: "second"},
		{Number: 12, Text: "third"},
	})

	if doc.text != "first\n\nsecond\n\nthird" {
		t.Fatalf("joined text = %q", doc.text)
	}
	for _, p := range doc.pages {
		if got := doc.slice(p.span); got == "" || strings.Contains(got, "\n") {
			t.Errorf("page %d span covers %q", p.number, got)
		}
	}

	tests := []struct {
		name string
		s    span
		want []int
	}{
		{"inside one page", span{0, 5}, []int{10}},
		{"across pages", span{3, 10}, []int{10, 11}},
		{"separator only", span{5, 7}, []int{10}},
		{"everything", span{0, len(doc.text)}, []int{10, 11, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doc.pagesIn(tt.s); !slices.Equal(got, tt.want) {
				t.Errorf("pagesIn(%v) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestHardSplit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
	}{
		{"words", "alpha beta gamma delta epsilon zeta eta theta", 12},
		{"no whitespace", strings.Repeat("x", 25), 10},
		{"multibyte", strings.Repeat("₹", 20), 10},
		{"mixed", "Total ₹₹₹₹₹₹₹₹ crores reported", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces := hardSplit(tt.text, span{0, len(tt.text)}, tt.limit)
			if len(pieces) == 0 {
				t.Fatal("hardSplit() returned no pieces")
			}
			var rebuilt strings.Builder
			prevEnd := 0
			for _, p := range pieces {
				piece := tt.text[p.start:p.end]
				if p.len() > tt.limit {
					t.Errorf("piece %q is %d bytes, limit %d", piece, p.len(), tt.limit)
				}
				if !utf8.ValidString(piece) {
					t.Errorf("piece %q splits a rune", piece)
				}
				if p.start < prevEnd {
					t.Errorf("pieces overlap at %d", p.start)
				}
				prevEnd = p.end
				rebuilt.WriteString(piece)
			}
			if rebuilt.String() != strings.Join(strings.Fields(tt.text), "") {
				t.Errorf("pieces lost text: %q", rebuilt.String())
			}
		})
	}
}

func TestSentences(t *testing.T) {
	text := "First one. Second one!  Third one? Tail without stop"
	var got []string
	for _, s := range sentences(text, span{0, len(text)}) {
		got = append(got, text[s.start:s.end])
	}
	want := []string{"First one.", "Second one!", "Third one?", "Tail without stop"}
	if !slices.Equal(got, want) {
		t.Errorf("sentences() = %q, want %q", got, want)
	}
}

func TestListItems(t *testing.T) {
	text := "Commitments include:\n1. Capital commitments\n2. Lease commitments\n• Guarantees\n- Letters of credit"
	var got []string
	for _, s := range listItems(text, span{0, len(text)}) {
		got = append(got, text[s.start:s.end])
	}
	want := []string{
		"Commitments include:",
		"1. Capital commitments",
		"2. Lease commitments",
		"• Guarantees",
		"- Letters of credit",
	}
	if !slices.Equal(got, want) {
		t.Errorf("listItems() = %q, want %q", got, want)
	}
}

func TestClassifyElement(t *testing.T) {
	tests := []struct {
		text string
		want ChunkType
	}{
		{"STATEMENT OF PROFIT AND LOSS", ChunkHeading},
		{"NOTE 4 Trade receivables", ChunkHeading},
		{"| Particulars | 2024 | 2023 |\n| Land | 10 | 9 |", ChunkTable},
		{"Particulars 2024 2023\n-----------\nLand 10 9", ChunkTable},
		{"- secured\n- unsecured", ChunkList},
		{"The company recognises revenue when control transfers.", ChunkParagraph},
	}
	for _, tt := range tests {
		if got := classifyElement(tt.text); got != tt.want {
			t.Errorf("classifyElement(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractElements_Offsets(t *testing.T) {
	text := "  Heading text here  \n\n\nBody paragraph.\n  \nTail"
	elems := extractElements(text, span{0, len(text)})
	if len(elems) != 3 {
		t.Fatalf("extractElements() returned %d elements, want 3", len(elems))
	}
	want := []string{"Heading text here", "Body paragraph.", "Tail"}
	for i, el := range elems {
		if got := text[el.start:el.end]; got != want[i] {
			t.Errorf("element %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestDetectContent(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       []string
		subjective bool
		objective  bool
	}{
		{"table and amount", "| Land | Rs. 1,000 |", []string{"table", "numerical"}, false, true},
		{"rupee symbol", "Valued at ₹ 12.5 crores", []string{"numerical"}, false, true},
		{"judgement", "Fair value is based on management estimates.", []string{"paragraph"}, true, false},
		{"blocks", "one\n\ntwo", []string{"paragraph"}, true, false},
		{"plain", "Land and buildings", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectContent(tt.text)
			if !slices.Equal(got.types, tt.want) {
				t.Errorf("types = %v, want %v", got.types, tt.want)
			}
			if got.subjective != tt.subjective || got.objective != tt.objective {
				t.Errorf("subjective=%v objective=%v, want %v %v", got.subjective, got.objective, tt.subjective, tt.objective)
			}
		})
	}
}
