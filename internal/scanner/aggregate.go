package scanner

import (
	"cmp"
	"slices"
)

// Aggregate removes exact duplicates and sorts findings by file, line, rule
// ID and message. Column and severity break any remaining ties so the order
// is total.
func Aggregate(findings []Finding) []Finding {
	seen := make(map[Finding]struct{}, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	slices.SortFunc(out, compareFindings)
	return out
}

func compareFindings(a, b Finding) int {
	return cmp.Or(
		cmp.Compare(a.Position.File, b.Position.File),
		cmp.Compare(a.Position.Line, b.Position.Line),
		cmp.Compare(a.RuleID, b.RuleID),
		cmp.Compare(a.Message, b.Message),
		cmp.Compare(a.Position.Column, b.Position.Column),
		cmp.Compare(a.Severity.Rank(), b.Severity.Rank()),
	)
}

// Highest returns the most severe finding severity, or "" when findings is empty.
func Highest(findings []Finding) Severity {
	var top Severity
	for _, f := range findings {
		if f.Severity.Rank() > top.Rank() {
			top = f.Severity
		}
	}
	return top
}
