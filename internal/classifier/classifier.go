package classifier

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_oracle.go -package=mocks finrag/internal/classifier Oracle

import (
	"regexp"
	"strings"
)

// Statement types reported by Classify.
const (
	StatementStandalone   = "standalone"
	StatementConsolidated = "consolidated"
	StatementBoth         = "both"
)

// Classification holds the labels assigned to a span of report text.
type Classification struct {
	SectionTypes  []string // Multi-label, e.g. ["balance_sheet", "fair_value"]
	NoteNumber    string   // "Note 12", "Note 5.3"; empty when none found
	StatementType string   // standalone, consolidated, both or empty
	Confidence    float64  // 0.0 to 1.0
}

// Oracle is the content classification capability consumed by the chunker
// and the ingestion pipeline.
type Oracle interface {
	// IsCritical reports whether a paragraph must never be split or truncated.
	IsCritical(text string) bool
	// Classify labels text. A non-empty sectionContext (a statement type from
	// document-level detection) overrides keyword-based statement detection.
	Classify(text, sectionContext string) Classification
}

var criticalKeywords = []string{
	"fair value",
	"investment propert",
	"as at march 31",
	"as at",
	"carrying amount",
	"note:",
	"note ",
	"significant accounting",
	"the group's investment",
	"the company's investment",
	"determined based on",
	"fair values of the properties",
	"properties are inr",
}

// Ordered by priority: the first pattern that matches decides the note number.
var notePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnote\s+(\d+[A-Z]?(?:\.\d+)?)\b`),
	regexp.MustCompile(`(?i)\bnote\s+(\d+[A-Z]?(?:\.\d+)?)\s*[-\x{2013}\x{2014}:]`),
	regexp.MustCompile(`(?im)^NOTE\s+(\d+[A-Z]?(?:\.\d+)?)\s*[-\x{2013}\x{2014}:]?\s*[A-Z]`),
	regexp.MustCompile(`(?m)^\s*(\d+[A-Z]?)\.\s+[A-Z]`),
	regexp.MustCompile(`\b(\d+\.\d+)\s+[A-Z]`),
	regexp.MustCompile(`(?i)[\(\[]note\s+(\d+[A-Z]?(?:\.\d+)?)[\)\]]`),
}

var (
	standalonePatterns = compileAll(
		`\bstandalone\b`,
		`\bstand\s*alone\b`,
		`separate\s+financial\s+statements`,
	)
	consolidatedPatterns = compileAll(
		`\bconsolidated\b`,
		`consolidated\s+financial\s+statements`,
		`group\s+financial\s+statements`,
	)
)

// Keyword is a regular-expression Oracle tuned on Indian annual reports.
// The zero value is ready to use.
type Keyword struct{}

// NewKeyword returns the keyword classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// IsCritical reports whether text carries a disclosure that has to stay whole:
// fair value statements, "as at" balances, note introductions and similar.
func (k *Keyword) IsCritical(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Classify assigns section types, note number and statement type to text.
func (k *Keyword) Classify(text, sectionContext string) Classification {
	lower := strings.ToLower(text)

	sections := DetectSections(lower)
	noteNumber := DetectNoteNumber(text)

	statementType := sectionContext
	if statementType == "" {
		statementType = DetectStatementType(lower)
	}

	return Classification{
		SectionTypes:  sections,
		NoteNumber:    noteNumber,
		StatementType: statementType,
		Confidence:    confidence(sections, noteNumber, statementType, sectionContext != ""),
	}
}

// DetectSections returns every section type whose patterns match text, in
// the fixed order of the section table.
func DetectSections(text string) []string {
	var found []string
	for _, sec := range sectionTable {
		for _, p := range sec.patterns {
			if p.MatchString(text) {
				found = append(found, sec.name)
				break
			}
		}
	}
	return found
}

// DetectNoteNumber returns the most prominent note reference, e.g. "Note 12",
// "Note 3A" or "Note 10.1".
func DetectNoteNumber(text string) string {
	for _, p := range notePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return "Note " + strings.ToUpper(m[1])
		}
	}
	return ""
}

// DetectStatementType returns standalone, consolidated, both, or "".
func DetectStatementType(text string) string {
	standalone := matchesAny(standalonePatterns, text)
	consolidated := matchesAny(consolidatedPatterns, text)

	switch {
	case standalone && consolidated:
		return StatementBoth
	case standalone:
		return StatementStandalone
	case consolidated:
		return StatementConsolidated
	default:
		return ""
	}
}

func confidence(sections []string, noteNumber, statementType string, fromContext bool) float64 {
	c := 0.5
	if len(sections) > 0 {
		c += min(float64(len(sections))*0.1, 0.3)
	}
	if noteNumber != "" {
		c += 0.15
	}
	if statementType != "" {
		if fromContext {
			c += 0.20
		} else {
			c += 0.05
		}
	}
	return min(c, 1.0)
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}
