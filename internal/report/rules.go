package report

import "strings"

// Rule assigns Label to any text containing one of Keywords.
type Rule struct {
	Keywords []string
	Label    string
}

func (r Rule) Matches(text string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Rules is an ordered first-match-wins table.
type Rules []Rule

// Classify returns the label of the first matching rule, or fallback.
func (rs Rules) Classify(text, fallback string) string {
	for _, r := range rs {
		if r.Matches(text) {
			return r.Label
		}
	}
	return fallback
}
