package scanner

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// RuleSet is an immutable set of rules keyed by ID.
type RuleSet struct {
	rules map[string]Rule
}

// NewRuleSet builds a set from rules. A later rule replaces an earlier one with the same ID.
func NewRuleSet(rules ...Rule) RuleSet {
	rs := RuleSet{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		rs.rules[r.ID()] = r
	}
	return rs
}

// With returns a copy of the set with rule added, replacing any rule with the same ID.
func (rs RuleSet) With(rule Rule) RuleSet {
	out := RuleSet{rules: make(map[string]Rule, len(rs.rules)+1)}
	for id, r := range rs.rules {
		out.rules[id] = r
	}
	out.rules[rule.ID()] = rule
	return out
}

// Select returns the subset named by ids. An empty ids keeps every rule.
func (rs RuleSet) Select(ids []string) (RuleSet, error) {
	want := mapset.NewSet[string]()
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			want.Add(id)
		}
	}
	if want.Cardinality() == 0 {
		return rs, nil
	}
	unknown := want.Difference(mapset.NewSetFromMapKeys(rs.rules))
	if unknown.Cardinality() > 0 {
		names := unknown.ToSlice()
		slices.Sort(names)
		return RuleSet{}, fmt.Errorf("unknown rule ids: %s", strings.Join(names, ", "))
	}
	out := RuleSet{rules: make(map[string]Rule, want.Cardinality())}
	for id := range want.Iter() {
		out.rules[id] = rs.rules[id]
	}
	return out, nil
}

// Rules returns the rules sorted by ID.
func (rs RuleSet) Rules() []Rule {
	out := make([]Rule, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Rule) int { return strings.Compare(a.ID(), b.ID()) })
	return out
}

func (rs RuleSet) Len() int { return len(rs.rules) }

// DefaultRules returns every rule with its default options.
func DefaultRules() RuleSet {
	return NewRuleSet(
		NewRuleNamingConsistency(DefaultNamingOptions()),
		NewRuleErrorStrings(DefaultErrorStringOptions()),
		NewRuleImportGrouping(ImportGroupingOptions{}),
		NewRulePointerValue(DefaultPointerValueOptions()),
		NewRuleLogKeys(DefaultLogKeyOptions()),
	)
}
