package classifier

import "regexp"

type sectionPatterns struct {
	name     string
	patterns []*regexp.Regexp
}

// sectionTable is matched against lower-cased text. A chunk may belong to
// several sections at once.
var sectionTable = []sectionPatterns{
	{"balance_sheet", compileAll(
		`balance\s+sheet`,
		`statement\s+of\s+financial\s+position`,
		`assets\s+and\s+liabilities`,
	)},
	{"income_statement", compileAll(
		`statement\s+of\s+profit`,
		`income\s+statement`,
		`profit\s+and\s+loss`,
		`statement\s+of\s+comprehensive\s+income`,
	)},
	{"cash_flow", compileAll(
		`cash\s+flow`,
		`statement\s+of\s+cash\s+flows`,
	)},
	{"notes", compileAll(
		`notes?\s+to\s+.*?financial\s+statements`,
		`notes?\s+to\s+.*?accounts`,
		`note\s+\d+`,
	)},
	{"fair_value", compileAll(
		`fair\s+value`,
		`level\s+[123]\s+fair\s+value`,
		`fair\s+value\s+measurement`,
	)},
	{"investment_property", compileAll(
		`investment\s+propert(?:y|ies)`,
		`rental\s+propert(?:y|ies)`,
		`commercial\s+propert(?:y|ies)`,
	)},
	{"borrowings", compileAll(
		`borrowings?`,
		`loans?\s+and\s+advances`,
		`debt`,
		`term\s+loans?`,
	)},
	{"equity", compileAll(
		`equity`,
		`share\s+capital`,
		`reserves\s+and\s+surplus`,
		`shareholders?\s+funds?`,
	)},
	{"ppe", compileAll(
		`property,?\s+plant\s+and\s+equipment`,
		`fixed\s+assets`,
		`tangible\s+assets`,
	)},
	{"intangibles", compileAll(
		`intangible\s+assets`,
		`goodwill`,
		`intellectual\s+property`,
	)},
	{"revenue_details", compileAll(
		`revenue\s+from\s+operations`,
		`revenue\s+recognition`,
		`disaggregation\s+of\s+revenue`,
	)},
	{"expense_details", compileAll(
		`cost\s+of\s+goods\s+sold`,
		`operating\s+expenses`,
		`administrative\s+expenses`,
	)},
	{"related_party", compileAll(
		`related\s+part(?:y|ies)`,
		`related\s+entities`,
	)},
	{"contingencies", compileAll(
		`contingent\s+liabilit(?:y|ies)`,
		`commitments?`,
		`contingencies`,
	)},
	{"eps", compileAll(
		`earnings?\s+per\s+share`,
		`\beps\b`,
	)},
	{"segment_reporting", compileAll(
		`segment\s+reporting`,
		`operating\s+segments`,
		`geographical\s+segments`,
	)},
	{"dividend", compileAll(
		`dividend`,
		`distribution\s+to\s+shareholders`,
	)},
	{"auditors_report", compileAll(
		`independent\s+auditor`,
		`auditor.?s\s+report`,
		`opinion\s+on\s+.*?financial\s+statements`,
	)},
	{"md_and_a", compileAll(
		`management.?s?\s+discussion`,
		`md\s*&\s*a`,
		`directors?.?\s+report`,
	)},
	{"accounting_policies", compileAll(
		`significant\s+accounting\s+policies`,
		`basis\s+of\s+preparation`,
		`accounting\s+standards`,
	)},
	{"risk_factors", compileAll(
		`risk\s+factors`,
		`risk\s+management`,
		`financial\s+risks?`,
	)},
}

// SectionTypes lists every section label Classify can produce.
func SectionTypes() []string {
	names := make([]string, len(sectionTable))
	for i, s := range sectionTable {
		names[i] = s.name
	}
	return names
}
