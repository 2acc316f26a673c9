package scanner

import (
	"strings"
	"testing"
)

func errorStringUnit(text string) Unit {
	return Unit{
		Kind:        KindErrorString,
		Position:    Position{File: "a.go", Line: 7},
		ErrorString: &ErrorStringUnit{Constructor: "fmt.Errorf", Text: text},
	}
}

func TestRuleErrorStrings(t *testing.T) {
	r := NewRuleErrorStrings(DefaultErrorStringOptions()).(UnitRule)
	tests := []struct {
		text string
		want []string
	}{
		{"Unable to create resource: %v.", []string{"should not be capitalized", "should not end with a period"}},
		{"unable to create resource: %v", nil},
		{"RPC failed: %v", nil},
		{"Kubernetes API unreachable", nil},
		{"waiting...", nil},
		{"done.", []string{"should not end with a period"}},
		{"Failed", []string{`(starts with "Failed")`}},
		{"", nil},
	}
	for _, tt := range tests {
		issues, err := r.Check(errorStringUnit(tt.text))
		if err != nil {
			t.Fatalf("check %q: %v", tt.text, err)
		}
		if len(issues) != len(tt.want) {
			t.Fatalf("%q: expected %d findings, got %+v", tt.text, len(tt.want), issues)
		}
		for i, frag := range tt.want {
			if !strings.Contains(issues[i].Message, frag) {
				t.Errorf("%q: finding %q should contain %q", tt.text, issues[i].Message, frag)
			}
			if issues[i].Severity != SeverityWarning || issues[i].Position.Line != 7 {
				t.Errorf("%q: unexpected finding %+v", tt.text, issues[i])
			}
		}
	}
}

func TestRuleErrorStringsAllowList(t *testing.T) {
	r := NewRuleErrorStrings(ErrorStringOptions{AllowedWords: []string{"Antrea"}}).(UnitRule)
	issues, err := r.Check(errorStringUnit("Antrea agent is not ready"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("allowed proper nouns may lead: %+v", issues)
	}
}

func TestRuleErrorStringsMissingPayload(t *testing.T) {
	r := NewRuleErrorStrings(DefaultErrorStringOptions()).(UnitRule)
	if _, err := r.Check(Unit{Kind: KindErrorString}); err == nil {
		t.Fatalf("expected an error for a unit without payload")
	}
}
