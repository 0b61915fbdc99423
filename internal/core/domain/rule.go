package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// RulesHeader is the header row of the rules collection.
var RulesHeader = []any{"Original_Pattern", "Normalized_Name", "Category"}

// Rule is a user-authored override: any product whose name contains
// Pattern (case-insensitively) is shown as Normalized under Category.
type Rule struct {
	Pattern    string `yaml:"pattern" json:"pattern"`
	Normalized string `yaml:"normalized" json:"normalized"`
	Category   string `yaml:"category" json:"category"`
}

// Matches reports whether the rule's pattern is a case-insensitive
// substring of name. A blank pattern never matches.
func (r Rule) Matches(name string) bool {
	pattern := strings.TrimSpace(r.Pattern)
	if pattern == "" {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(name), fold.String(pattern))
}

// Cells renders the rule in column order.
func (r Rule) Cells() []any {
	return []any{r.Pattern, r.Normalized, r.Category}
}

// RuleFromCells parses a stored rule row.
func RuleFromCells(cells []any) Rule {
	return Rule{
		Pattern:    CellText(cells, 0),
		Normalized: CellText(cells, 1),
		Category:   CellText(cells, 2),
	}
}

// FirstMatch returns the first rule in list order that matches name.
func FirstMatch(rules []Rule, name string) (Rule, bool) {
	for _, r := range rules {
		if r.Matches(name) {
			return r, true
		}
	}
	return Rule{}, false
}
