package indexer

import (
	"regexp"
	"strings"
)

var (
	tableRowPattern = regexp.MustCompile(`(?m)(?:^|\n)\s*\|.*\|`)
	currencyPattern = regexp.MustCompile(`(?i)(?:INR|Rs\.|₹)\s*[\d,]+(?:\.\d+)?(?:\s*(?:lakhs?|crores?|millions?|billions?))?`)

	subjectivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhas been determined\b`),
		regexp.MustCompile(`(?i)\bbased on\b`),
		regexp.MustCompile(`(?i)\bin accordance with\b`),
		regexp.MustCompile(`(?i)\bmanagement\s+(?:is of the view|believes|considers)\b`),
		regexp.MustCompile(`(?i)\bassumptions?\b`),
		regexp.MustCompile(`(?i)\bestimates?\b`),
		regexp.MustCompile(`(?i)\bjudgement\b`),
		regexp.MustCompile(`(?i)\brequires?\b`),
	}
)

type contentSignals struct {
	types      []string
	subjective bool
	objective  bool
}

// detectContent separates objective material (tables, currency amounts) from
// explanatory prose.
func detectContent(text string) contentSignals {
	var sig contentSignals

	if tableRowPattern.MatchString(text) {
		sig.objective = true
		sig.types = append(sig.types, "table")
	}
	if currencyPattern.MatchString(text) {
		sig.objective = true
		sig.types = append(sig.types, "numerical")
	}

	for _, p := range subjectivePatterns {
		if p.MatchString(text) {
			sig.subjective = true
			break
		}
	}
	if strings.Count(text, "\n\n") > 0 {
		sig.subjective = true
	}
	if sig.subjective {
		sig.types = append(sig.types, "paragraph")
	}
	return sig
}

func (sig contentSignals) apply(c *Chunk) {
	c.ContentTypes = sig.types
	c.HasSubjective = sig.subjective
	c.HasObjective = sig.objective
}
