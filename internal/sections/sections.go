// Package sections locates the statement sections of an annual report
// (directors' report, consolidated and standalone statements and notes) so
// that text can be attributed to the statement it belongs to. "Note 10" of the
// consolidated statements is a different note from "Note 10" of the
// standalone ones.
package sections

import (
	"regexp"
	"sort"
	"strings"
)

// Kind names a detected section.
type Kind string

const (
	DirectorsReport          Kind = "directors_report"
	AuditorsReport           Kind = "auditors_report"
	ManagementDiscussion     Kind = "management_discussion"
	ConsolidatedBalanceSheet Kind = "consolidated_balance_sheet"
	ConsolidatedPL           Kind = "consolidated_pl"
	ConsolidatedCashFlow     Kind = "consolidated_cash_flow"
	ConsolidatedEquity       Kind = "consolidated_equity"
	ConsolidatedNotes        Kind = "consolidated_notes"
	StandaloneBalanceSheet   Kind = "standalone_balance_sheet"
	StandalonePL             Kind = "standalone_pl"
	StandaloneCashFlow       Kind = "standalone_cash_flow"
	StandaloneEquity         Kind = "standalone_equity"
	StandaloneNotes          Kind = "standalone_notes"
)

// Statement groupings of a Boundary.
const (
	Consolidated = "consolidated"
	Standalone   = "standalone"
	Other        = "other"
)

// Boundary is the half-open [Start, End) range of one section.
type Boundary struct {
	Kind          Kind
	Name          string // Matched heading text
	StatementType string
	Start         int
	End           int
}

type rule struct {
	kind      Kind
	statement string
	pattern   *regexp.Regexp
}

func rules(kind Kind, statement string, exprs ...string) []rule {
	out := make([]rule, len(exprs))
	for i, e := range exprs {
		out[i] = rule{kind: kind, statement: statement, pattern: regexp.MustCompile(`(?im)` + e)}
	}
	return out
}

func concat(groups ...[]rule) []rule {
	var out []rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	consolidatedRules = concat(
		rules(ConsolidatedBalanceSheet, Consolidated,
			`CONSOLIDATED\s+BALANCE\s+SHEET`,
			`CONSOLIDATED\s+STATEMENT\s+OF\s+FINANCIAL\s+POSITION`),
		rules(ConsolidatedPL, Consolidated,
			`CONSOLIDATED\s+STATEMENT\s+OF\s+PROFIT\s+AND\s+LOSS`,
			`CONSOLIDATED\s+PROFIT\s+(?:AND|&)\s+LOSS`,
			`CONSOLIDATED\s+STATEMENT\s+OF\s+COMPREHENSIVE\s+INCOME`),
		rules(ConsolidatedCashFlow, Consolidated,
			`CONSOLIDATED\s+CASH\s+FLOW\s+STATEMENT`,
			`CONSOLIDATED\s+STATEMENT\s+OF\s+CASH\s+FLOWS`),
		rules(ConsolidatedEquity, Consolidated,
			`CONSOLIDATED\s+STATEMENT\s+OF\s+CHANGES\s+IN\s+EQUITY`),
		rules(ConsolidatedNotes, Consolidated,
			`NOTES?\s+TO\s+(?:THE\s+)?CONSOLIDATED\s+FINANCIAL\s+STATEMENTS?`,
			`NOTES?\s+FORMING\s+PART\s+OF\s+(?:THE\s+)?CONSOLIDATED\s+FINANCIAL\s+STATEMENTS?`,
			`NOTES?\s+(?:ON|TO)\s+CONSOLIDATED\s+(?:ACCOUNTS?|BALANCE\s+SHEET)`),
	)

	// Standalone headings rarely say "standalone"; any candidate close to
	// the word "consolidated" is discarded.
	standaloneRules = concat(
		rules(StandaloneBalanceSheet, Standalone,
			`\bBALANCE\s+SHEET\b`,
			`\bSTATEMENT\s+OF\s+FINANCIAL\s+POSITION\b`),
		rules(StandalonePL, Standalone,
			`\bSTATEMENT\s+OF\s+PROFIT\s+AND\s+LOSS\b`,
			`\bPROFIT\s+(?:AND|&)\s+LOSS\b`),
		rules(StandaloneCashFlow, Standalone,
			`\bCASH\s+FLOW\s+STATEMENT\b`,
			`\bSTATEMENT\s+OF\s+CASH\s+FLOWS\b`),
		rules(StandaloneEquity, Standalone,
			`\bSTATEMENT\s+OF\s+CHANGES\s+IN\s+EQUITY\b`),
		rules(StandaloneNotes, Standalone,
			`NOTES?\s+TO\s+(?:THE\s+)?FINANCIAL\s+STATEMENTS?`,
			`NOTES?\s+FORMING\s+PART\s+OF\s+(?:THE\s+)?FINANCIAL\s+STATEMENTS?`,
			`NOTES?\s+(?:ON|TO)\s+(?:ACCOUNTS?|BALANCE\s+SHEET)`),
	)

	otherRules = concat(
		rules(DirectorsReport, Other,
			`DIRECTORS?'?\s+REPORT`,
			`BOARD'?S?\s+REPORT`,
			`REPORT\s+OF\s+THE\s+BOARD\s+OF\s+DIRECTORS?`),
		rules(AuditorsReport, Other,
			`INDEPENDENT\s+AUDITORS?'?\s+REPORT`,
			`AUDITORS?'?\s+REPORT`),
		rules(ManagementDiscussion, Other,
			`MANAGEMENT\s+DISCUSSION\s+(?:AND|&)\s+ANALYSIS`,
			`MD\s*&\s*A`),
	)
)

const (
	consolidatedWindow = 50 // bytes searched around a standalone candidate
	collisionDistance  = 20 // candidates closer than this describe the same heading
)

// specificity ranks kinds that win when two headings collide; lower wins.
var specificity = map[Kind]int{
	ConsolidatedNotes:        0,
	StandaloneNotes:          1,
	ConsolidatedBalanceSheet: 2,
	StandaloneBalanceSheet:   3,
	ConsolidatedPL:           4,
	StandalonePL:             5,
}

func rank(k Kind) int {
	if r, ok := specificity[k]; ok {
		return r
	}
	return len(specificity)
}

// Detect returns the sections of text sorted by position. Each section ends
// where the next one starts; the last ends at len(text).
func Detect(text string) []Boundary {
	consolidated := match(text, consolidatedRules)

	candidates := append([]Boundary(nil), consolidated...)
	for _, b := range match(text, standaloneRules) {
		if nearConsolidated(text, b) || collides(b, consolidated) {
			continue
		}
		candidates = append(candidates, b)
	}
	candidates = append(candidates, match(text, otherRules)...)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	var bounds []Boundary
	for _, b := range candidates {
		if n := len(bounds); n > 0 && b.Start-bounds[n-1].Start < collisionDistance {
			if rank(b.Kind) < rank(bounds[n-1].Kind) {
				bounds[n-1] = b
			}
			continue
		}
		bounds = append(bounds, b)
	}

	for i := range bounds {
		if i < len(bounds)-1 {
			bounds[i].End = bounds[i+1].Start
		} else {
			bounds[i].End = len(text)
		}
	}
	return bounds
}

func match(text string, rs []rule) []Boundary {
	var out []Boundary
	for _, r := range rs {
		for _, m := range r.pattern.FindAllStringIndex(text, -1) {
			out = append(out, Boundary{
				Kind:          r.kind,
				Name:          strings.TrimSpace(text[m[0]:m[1]]),
				StatementType: r.statement,
				Start:         m[0],
			})
		}
	}
	return out
}

func nearConsolidated(text string, b Boundary) bool {
	from := max(0, b.Start-consolidatedWindow)
	to := min(len(text), b.Start+len(b.Name)+consolidatedWindow)
	return strings.Contains(strings.ToLower(text[from:to]), "consolidat")
}

func collides(b Boundary, others []Boundary) bool {
	for _, o := range others {
		d := b.Start - o.Start
		if d < 0 {
			d = -d
		}
		if d < collisionDistance {
			return true
		}
	}
	return false
}

// Map answers position queries against the sections of one document.
type Map struct {
	bounds []Boundary
}

// NewMap detects the sections of text.
func NewMap(text string) *Map {
	return &Map{bounds: Detect(text)}
}

// Boundaries returns the detected sections.
func (m *Map) Boundaries() []Boundary {
	return m.bounds
}

// At returns the section containing pos.
func (m *Map) At(pos int) (Boundary, bool) {
	i := sort.Search(len(m.bounds), func(i int) bool { return m.bounds[i].End > pos })
	if i < len(m.bounds) && m.bounds[i].Start <= pos {
		return m.bounds[i], true
	}
	return Boundary{}, false
}

// StatementType returns "consolidated" or "standalone" for the section that
// holds the midpoint of [start, end), or "" when the range lies outside the
// financial statements.
func (m *Map) StatementType(start, end int) string {
	b, ok := m.At((start + end) / 2)
	if !ok || b.StatementType == Other {
		return ""
	}
	return b.StatementType
}

// InferStatementType reads a statement type from free text such as a user
// query. It returns "" when neither is mentioned.
func InferStatementType(query string) string {
	lower := strings.ToLower(query)
	switch {
	case consolidatedQuery.MatchString(lower):
		return Consolidated
	case standaloneQuery.MatchString(lower):
		return Standalone
	}
	return ""
}

var (
	consolidatedQuery = regexp.MustCompile(`consolidat(?:ed|ion)`)
	standaloneQuery   = regexp.MustCompile(`standalone|stand\s*alone|separate`)
)
