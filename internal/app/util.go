package app

import (
	"strings"

	"github.com/tnqn/code-review-comments/internal/config"
	"github.com/tnqn/code-review-comments/internal/scanner"
)

// SplitAndTrim splits a comma-separated flag value, dropping empty entries.
func SplitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RuleInfo describes a rule for the catalog listing.
type RuleInfo struct {
	ID          string
	Description string
	Suggestion  string
}

var suggestions = map[string]string{
	scanner.RuleNamingConsistencyID: "Spell a word the same way in every function name",
	scanner.RuleErrorStringsID:      "Start error strings lower case and drop the trailing period",
	scanner.RuleImportGroupingID:    "Group imports as standard, third-party, local, separated by blank lines",
	scanner.RulePointerValueID:      "Pass slices, maps, channels and interfaces by value; pass large structs by pointer",
	scanner.RuleLogKeysID:           "Log constant messages with key-value pairs in one key casing",
}

// Catalog lists every rule the checker knows, sorted by ID.
func Catalog() []RuleInfo {
	var out []RuleInfo
	for _, r := range scanner.DefaultRules().Rules() {
		out = append(out, RuleInfo{ID: r.ID(), Description: r.Description(), Suggestion: suggestions[r.ID()]})
	}
	return out
}

// BuildRules builds the configured rule set. modulePath is the default local
// import prefix when the config names none.
func BuildRules(cfg config.Config, modulePath string) (scanner.RuleSet, error) {
	local := cfg.Imports.Local
	if len(local) == 0 && modulePath != "" {
		local = []string{modulePath}
	}
	set := scanner.NewRuleSet(
		scanner.NewRuleNamingConsistency(scanner.NamingOptions{
			MinAbbrevLen: cfg.Naming.MinAbbrevLen,
			Ignore:       cfg.Naming.Ignore,
			Words:        cfg.Naming.Words,
		}),
		scanner.NewRuleErrorStrings(scanner.ErrorStringOptions{AllowedWords: cfg.ErrorStrings.AllowedWords}),
		scanner.NewRuleImportGrouping(scanner.ImportGroupingOptions{
			Standard:   cfg.Imports.Standard,
			ThirdParty: cfg.Imports.ThirdParty,
			Local:      local,
		}),
		scanner.NewRulePointerValue(scanner.PointerValueOptions{MaxStructFields: cfg.PointerValue.MaxStructFields}),
		scanner.NewRuleLogKeys(scanner.LogKeyOptions{Style: cfg.LogKeys.Style}),
	)
	if len(cfg.Rules) == 0 {
		return set, nil
	}
	return set.Select(cfg.Rules)
}
