package scanner

import (
	"strings"
	"testing"
)

func ruleIDs(rs RuleSet) []string {
	var ids []string
	for _, r := range rs.Rules() {
		ids = append(ids, r.ID())
	}
	return ids
}

func TestDefaultRulesSortedByID(t *testing.T) {
	got := strings.Join(ruleIDs(DefaultRules()), ",")
	want := "error-strings,import-grouping,log-keys,naming-consistency,pointer-value"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestRuleSetWithReplacesByID(t *testing.T) {
	first := &mockRule{id: "MOCK"}
	second := &mockRule{id: "MOCK"}
	base := NewRuleSet(first)
	replaced := base.With(second)

	if replaced.Len() != 1 {
		t.Fatalf("expected 1 rule after replacement, got %d", replaced.Len())
	}
	if replaced.Rules()[0] != Rule(second) {
		t.Fatalf("With should replace the rule with the same ID")
	}
	if base.Rules()[0] != Rule(first) {
		t.Fatalf("With must not modify the original set")
	}
	// registering the same rule again is a no-op
	if again := replaced.With(second); again.Len() != 1 {
		t.Fatalf("re-registering should be idempotent")
	}
}

func TestRuleSetSelect(t *testing.T) {
	sub, err := DefaultRules().Select([]string{" log-keys", "error-strings", ""})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := strings.Join(ruleIDs(sub), ","); got != "error-strings,log-keys" {
		t.Fatalf("unexpected subset %s", got)
	}

	all, err := DefaultRules().Select(nil)
	if err != nil || all.Len() != 5 {
		t.Fatalf("empty selection should keep every rule, got %d (%v)", all.Len(), err)
	}
}

func TestRuleSetSelectUnknown(t *testing.T) {
	_, err := DefaultRules().Select([]string{"nope", "error-strings", "also-nope"})
	if err == nil {
		t.Fatalf("expected an error for unknown ids")
	}
	if !strings.Contains(err.Error(), "also-nope, nope") {
		t.Fatalf("error should list unknown ids sorted: %v", err)
	}
}
