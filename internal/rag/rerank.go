package rag

import (
	"sort"
	"strings"
)

const hintBoost = 0.2

// queryHints maps query phrases to the section type they point at. A hint
// matches when the phrase occurs anywhere in the lower-cased query.
var queryHints = []struct {
	phrases []string
	section string
}{
	{[]string{"fair value"}, "fair_value"},
	{[]string{"investment propert"}, "investment_property"},
	{[]string{"balance sheet"}, "balance_sheet"},
	{[]string{"income statement", "profit"}, "income_statement"},
	{[]string{"cash flow"}, "cash_flow"},
	{[]string{"note"}, "notes"},
	{[]string{"borrowing", "debt"}, "borrowings"},
	{[]string{"equity"}, "equity"},
}

// sectionHints returns the section types suggested by query, plus every
// section type filter.
func sectionHints(query string, filters Filters) map[string]struct{} {
	lower := strings.ToLower(query)
	hints := make(map[string]struct{})
	for _, h := range queryHints {
		for _, p := range h.phrases {
			if strings.Contains(lower, p) {
				hints[h.section] = struct{}{}
				break
			}
		}
	}
	for _, s := range filters.SectionTypes {
		hints[s] = struct{}{}
	}
	return hints
}

// rerank boosts results whose section types overlap the query hints by 20%
// per matching section and sorts by score, highest first. The sort is stable
// so equal scores keep merge order.
func rerank(results []RetrievalResult, query string, filters Filters) []RetrievalResult {
	hints := sectionHints(query, filters)

	out := make([]RetrievalResult, len(results))
	copy(out, results)

	if len(hints) > 0 {
		for i := range out {
			matches := 0
			for _, s := range out[i].SectionTypes {
				if _, ok := hints[s]; ok {
					matches++
				}
			}
			if matches > 0 {
				out[i].Score *= 1 + hintBoost*float64(matches)
				out[i].RetrievalTier = TierReranked
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
