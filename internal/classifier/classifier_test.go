package classifier

import (
	"math"
	"slices"
	"testing"
)

func TestKeyword_IsCritical(t *testing.T) {
	k := NewKeyword()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"fair value disclosure", "The fair values of the properties are INR 1,234 crores as at March 31, 2024.", true},
		{"carrying amount", "The Carrying Amount of the building was reduced.", true},
		{"note introduction", "Note: figures are in lakhs", true},
		{"narrative", "Revenue grew by ten percent during the year.", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.IsCritical(tt.text); got != tt.want {
				t.Errorf("IsCritical(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestKeyword_Classify(t *testing.T) {
	k := NewKeyword()

	t.Run("consolidated balance sheet", func(t *testing.T) {
		got := k.Classify("CONSOLIDATED BALANCE SHEET as at 31 March 2024", "")
		if !slices.Contains(got.SectionTypes, "balance_sheet") {
			t.Errorf("SectionTypes = %v, want balance_sheet", got.SectionTypes)
		}
		if got.StatementType != StatementConsolidated {
			t.Errorf("StatementType = %q, want %q", got.StatementType, StatementConsolidated)
		}
	})

	t.Run("context overrides detection", func(t *testing.T) {
		got := k.Classify("Consolidated balance sheet", StatementStandalone)
		if got.StatementType != StatementStandalone {
			t.Errorf("StatementType = %q, want %q", got.StatementType, StatementStandalone)
		}
	})

	t.Run("both statement types", func(t *testing.T) {
		got := k.Classify("Standalone and consolidated financial statements", "")
		if got.StatementType != StatementBoth {
			t.Errorf("StatementType = %q, want %q", got.StatementType, StatementBoth)
		}
	})

	t.Run("investment property note", func(t *testing.T) {
		got := k.Classify("NOTE 12 - INVESTMENT PROPERTY\nThe fair value of the investment property is INR 500 crores.", "")
		for _, want := range []string{"notes", "fair_value", "investment_property"} {
			if !slices.Contains(got.SectionTypes, want) {
				t.Errorf("SectionTypes = %v, missing %q", got.SectionTypes, want)
			}
		}
		if got.NoteNumber != "Note 12" {
			t.Errorf("NoteNumber = %q, want Note 12", got.NoteNumber)
		}
	})

	t.Run("section order is fixed", func(t *testing.T) {
		got := k.Classify("dividend declared; cash flow improved; balance sheet strong", "")
		want := []string{"balance_sheet", "cash_flow", "dividend"}
		if !slices.Equal(got.SectionTypes, want) {
			t.Errorf("SectionTypes = %v, want %v", got.SectionTypes, want)
		}
	})

	t.Run("nothing recognised", func(t *testing.T) {
		got := k.Classify("The weather was pleasant.", "")
		if len(got.SectionTypes) != 0 || got.NoteNumber != "" || got.StatementType != "" {
			t.Errorf("expected empty classification, got %+v", got)
		}
		if got.Confidence != 0.5 {
			t.Errorf("Confidence = %v, want 0.5", got.Confidence)
		}
	})
}

func TestDetectNoteNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Refer Note 12 for details", "Note 12"},
		{"NOTE 3a - Leases", "Note 3A"},
		{"see note 10.1 below", "Note 10.1"},
		{"12.1 Fair Value", "Note 12.1"},
		{"Revenue rose sharply", ""},
	}
	for _, tt := range tests {
		if got := DetectNoteNumber(tt.text); got != tt.want {
			t.Errorf("DetectNoteNumber(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestConfidence(t *testing.T) {
	k := NewKeyword()

	full := k.Classify("Note 12 Investment property", StatementStandalone)
	if full.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want capped at 1.0", full.Confidence)
	}

	single := k.Classify("balance sheet", "")
	if math.Abs(single.Confidence-0.6) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.6", single.Confidence)
	}
}

func TestSectionTypes(t *testing.T) {
	types := SectionTypes()
	if len(types) != 21 {
		t.Fatalf("SectionTypes() returned %d labels, want 21", len(types))
	}
	if types[0] != "balance_sheet" || types[len(types)-1] != "risk_factors" {
		t.Errorf("unexpected order: first %q, last %q", types[0], types[len(types)-1])
	}
}
