package scanner

import (
	"fmt"
	"strings"
)

// ImportGroupingOptions is the prefix table used to classify import paths.
// A path matching no prefix is standard when its first element has no dot,
// third-party otherwise.
type ImportGroupingOptions struct {
	Standard   []string
	ThirdParty []string
	Local      []string
}

type importClass int

const (
	classStandard importClass = iota
	classThirdParty
	classLocal
)

func (c importClass) String() string {
	switch c {
	case classStandard:
		return "standard library"
	case classThirdParty:
		return "third-party"
	default:
		return "local"
	}
}

// Imports are grouped standard, third-party, local; each group in its own blank-line separated block.
type ruleImportGrouping struct {
	opts ImportGroupingOptions
}

func NewRuleImportGrouping(opts ImportGroupingOptions) Rule {
	return &ruleImportGrouping{opts: opts}
}

func (r *ruleImportGrouping) ID() string        { return RuleImportGroupingID }
func (r *ruleImportGrouping) Kinds() []UnitKind { return []UnitKind{KindImportGroup} }
func (r *ruleImportGrouping) Description() string {
	return "Group imports as standard library, third-party and local, in that order"
}

func (r *ruleImportGrouping) classify(path string) importClass {
	best, bestLen := importClass(-1), -1
	try := func(prefixes []string, c importClass) {
		for _, p := range prefixes {
			p = strings.TrimSuffix(p, "/")
			if p == "" || len(p) <= bestLen {
				continue
			}
			if path == p || strings.HasPrefix(path, p+"/") {
				best, bestLen = c, len(p)
			}
		}
	}
	try(r.opts.Standard, classStandard)
	try(r.opts.ThirdParty, classThirdParty)
	try(r.opts.Local, classLocal)
	if bestLen >= 0 {
		return best
	}
	first, _, _ := strings.Cut(path, "/")
	if strings.Contains(first, ".") {
		return classThirdParty
	}
	return classStandard
}

func (r *ruleImportGrouping) Check(u Unit) ([]Finding, error) {
	ig := u.ImportGroup
	if ig == nil {
		return nil, fmt.Errorf("unit of kind %s has no import payload", u.Kind)
	}

	var blocks [][]ImportSpec
	for i, imp := range ig.Imports {
		if i == 0 || imp.Block != ig.Imports[i-1].Block {
			blocks = append(blocks, nil)
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], imp)
	}

	var issues []Finding
	maxSeen := importClass(-1)
	for _, block := range blocks {
		classes := make([]importClass, len(block))
		var counts [3]int
		for i, imp := range block {
			classes[i] = r.classify(imp.Path)
			counts[classes[i]]++
		}
		group := classes[0]
		for c := classStandard; c <= classLocal; c++ {
			if counts[c] > counts[group] {
				group = c
			}
		}
		for i, imp := range block {
			switch {
			case classes[i] != group:
				issues = append(issues, Finding{
					RuleID:   r.ID(),
					Severity: SeverityWarning,
					Position: imp.Position,
					Message:  fmt.Sprintf("%s import %q is grouped with %s imports; separate groups with a blank line", classes[i], imp.Path, group),
				})
			case group < maxSeen:
				issues = append(issues, Finding{
					RuleID:   r.ID(),
					Severity: SeverityWarning,
					Position: imp.Position,
					Message:  fmt.Sprintf("%s import %q appears after %s imports", classes[i], imp.Path, maxSeen),
				})
			}
		}
		maxSeen = max(maxSeen, group)
	}
	return issues, nil
}
