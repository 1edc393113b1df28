package notes

import (
	"strings"
	"testing"
)

func TestMainNotes_Tiling(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantNumbers []string
	}{
		{
			name:        "preamble then two notes",
			text:        "STANDALONE FINANCIAL STATEMENTS\n\nNOTE 12 - INVESTMENT PROPERTY\nbody\n\nNOTE 13 - PPE\nmore body",
			wantNumbers: []string{"", "Note 12", "Note 13"},
		},
		{
			name:        "note at offset zero",
			text:        "NOTE 1: Corporate Information\ntext\nNote 2 Significant Accounting Policies\ntext",
			wantNumbers: []string{"Note 1", "Note 2"},
		},
		{
			name:        "indented marker",
			text:        "intro\n   note 4 – Borrowings\nloan text",
			wantNumbers: []string{"", "Note 4"},
		},
		{
			name:        "duplicate numbers stay separate",
			text:        "NOTE 5 - EQUITY\na\nNOTE 5 - EQUITY\nb",
			wantNumbers: []string{"Note 5", "Note 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := MainNotes(tt.text)
			if len(bounds) != len(tt.wantNumbers) {
				t.Fatalf("MainNotes() returned %d boundaries, want %d: %+v", len(bounds), len(tt.wantNumbers), bounds)
			}
			for i, b := range bounds {
				if b.Number != tt.wantNumbers[i] {
					t.Errorf("boundary %d Number = %q, want %q", i, b.Number, tt.wantNumbers[i])
				}
			}

			if bounds[0].Start != 0 {
				t.Errorf("first boundary starts at %d, want 0", bounds[0].Start)
			}
			for i := 0; i < len(bounds)-1; i++ {
				if bounds[i].End != bounds[i+1].Start {
					t.Errorf("boundary %d ends at %d but next starts at %d", i, bounds[i].End, bounds[i+1].Start)
				}
			}
			if last := bounds[len(bounds)-1]; last.End != len(tt.text) {
				t.Errorf("last boundary ends at %d, want %d", last.End, len(tt.text))
			}

			var rebuilt strings.Builder
			for _, b := range bounds {
				rebuilt.WriteString(b.Slice(tt.text))
			}
			if rebuilt.String() != tt.text {
				t.Errorf("concatenated boundaries do not reconstruct the document")
			}
		})
	}
}

func TestMainNotes_NoStructure(t *testing.T) {
	if got := MainNotes("Directors' report\n\nThe company performed well."); got != nil {
		t.Fatalf("MainNotes() = %+v, want nil", got)
	}
	if got := MainNotes(""); got != nil {
		t.Fatalf("MainNotes(\"\") = %+v, want nil", got)
	}
}

func TestMainNotes_Titles(t *testing.T) {
	text := "NOTE 12 - INVESTMENT PROPERTY\n\n12.1 Fair Value\n\nNOTE 13\nno title on the marker line"
	bounds := MainNotes(text)
	if len(bounds) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(bounds))
	}
	if bounds[0].Title != "INVESTMENT PROPERTY" {
		t.Errorf("Title = %q, want INVESTMENT PROPERTY", bounds[0].Title)
	}
	if bounds[1].Title != "" {
		t.Errorf("missing title should degrade to empty string, got %q", bounds[1].Title)
	}
}

func TestMainNotes_IgnoresMidLineMentions(t *testing.T) {
	text := "As disclosed in Note 7 to the accounts, the group holds land."
	if got := MainNotes(text); got != nil {
		t.Fatalf("mid-line reference should not start a note, got %+v", got)
	}
}

func TestSubNotes(t *testing.T) {
	note := "NOTE 12 - INVESTMENT PROPERTY\n" +
		"12.1 Fair Value\nvaluation text\n" +
		"5.2 Stray Reference\nshould stay inside 12.1\n" +
		"12.2 Rental Income\nrent text"

	subs := SubNotes(note, "Note 12")
	if len(subs) != 2 {
		t.Fatalf("SubNotes() returned %d sub-notes, want 2: %+v", len(subs), subs)
	}
	if subs[0].Number != "12.1" || subs[0].Title != "Fair Value" {
		t.Errorf("first sub-note = %+v", subs[0])
	}
	if subs[1].Number != "12.2" || subs[1].Title != "Rental Income" {
		t.Errorf("second sub-note = %+v", subs[1])
	}
	if subs[0].End != subs[1].Start {
		t.Errorf("sub-note ranges must be contiguous: %d != %d", subs[0].End, subs[1].Start)
	}
	if subs[1].End != len(note) {
		t.Errorf("last sub-note should end at %d, got %d", len(note), subs[1].End)
	}
	if !strings.Contains(subs[0].Slice(note), "5.2 Stray Reference") {
		t.Errorf("stray sub-note marker should be part of 12.1")
	}

	if got := SubNotes(note, "12"); len(got) != 2 {
		t.Errorf("bare number should be accepted, got %d sub-notes", len(got))
	}
	if got := SubNotes("12.5 crores were spent", "Note 12"); got != nil {
		t.Errorf("lower-case continuation is not a sub-note heading, got %+v", got)
	}
}

func TestSubSections(t *testing.T) {
	text := "intro\n(a) Land\nland text\n(b) Buildings\nbuilding text\n(i) Leasehold\nlease\n(ii) Freehold\nfree"

	secs := SubSections(text)
	if len(secs) != 2 {
		t.Fatalf("SubSections() returned %d, want 2: %+v", len(secs), secs)
	}
	if secs[0].Number != "(a)" || secs[1].Number != "(b)" {
		t.Errorf("unexpected sub-sections: %+v", secs)
	}
	if !strings.Contains(secs[1].Slice(text), "(ii) Freehold") {
		t.Errorf("roman items should remain inside (b)")
	}

	subs := SubSubSections(text)
	if len(subs) != 2 {
		t.Fatalf("SubSubSections() returned %d, want 2: %+v", len(subs), subs)
	}
	if subs[0].Number != "(i)" || subs[1].Number != "(ii)" {
		t.Errorf("unexpected sub-sub-sections: %+v", subs)
	}
}

func TestSubSections_LetterSequence(t *testing.T) {
	text := "(g) Goodwill\nx\n(h) Hedges\ny\n(i) Inventories\nz"
	secs := SubSections(text)
	if len(secs) != 3 {
		t.Fatalf("expected (i) after (h) to be a sub-section, got %+v", secs)
	}
	if secs[2].Number != "(i)" {
		t.Errorf("third sub-section = %q, want (i)", secs[2].Number)
	}
}

func TestSubSubSections(t *testing.T) {
	text := "(i) Fair value\nA\n(ii) Cost\nB\n(iv) Other\nC"
	secs := SubSubSections(text)
	if len(secs) != 3 {
		t.Fatalf("SubSubSections() returned %d items, want 3: %+v", len(secs), secs)
	}

	wantNumbers := []string{"(i)", "(ii)", "(iv)"}
	wantTitles := []string{"Fair value", "Cost", "Other"}
	for i, sec := range secs {
		if sec.Number != wantNumbers[i] || sec.Title != wantTitles[i] {
			t.Errorf("item %d = %q %q, want %q %q", i, sec.Number, sec.Title, wantNumbers[i], wantTitles[i])
		}
		if i > 0 && secs[i-1].End != sec.Start {
			t.Errorf("item %d starts at %d, previous ends at %d", i, sec.Start, secs[i-1].End)
		}
	}
	if secs[2].End != len(text) {
		t.Errorf("last End = %d, want %d", secs[2].End, len(text))
	}

	if got := SubSubSections("no roman items here"); len(got) != 0 {
		t.Errorf("SubSubSections() on plain text = %+v, want none", got)
	}
}

func TestIsNoteSection(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Refer NOTE 14 for details", true},
		{"Notes to the Standalone Financial Statements", true},
		{"Statement of cash flows", false},
	}
	for _, tt := range tests {
		if got := IsNoteSection(tt.text); got != tt.want {
			t.Errorf("IsNoteSection(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
