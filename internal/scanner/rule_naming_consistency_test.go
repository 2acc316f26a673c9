package scanner

import (
	"context"
	"testing"
)

func TestRuleNamingConsistencyFlagsMinoritySpelling(t *testing.T) {
	r := NewRuleNamingConsistency(DefaultNamingOptions()).(CorpusRule)
	units := collect(funcUnits("getInterfaceByName", "getIntfByIP", "getInterfaceByIP"))

	issues, err := r.CheckAll(units)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected exactly one finding, got %+v", issues)
	}
	if issues[0].Position.Line != 2 {
		t.Fatalf("expected getIntfByIP (line 2) to be flagged, got %+v", issues[0])
	}
	want := `getIntfByIP spells "Intf" where other functions of the same shape use "Interface"`
	if issues[0].Message != want {
		t.Fatalf("message = %q, want %q", issues[0].Message, want)
	}
}

func TestRuleNamingConsistencyMajorityWins(t *testing.T) {
	r := NewRuleNamingConsistency(DefaultNamingOptions()).(CorpusRule)
	units := collect(funcUnits("newCfgLoader", "newCfgLoader", "newConfigLoader"))

	issues, err := r.CheckAll(units)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 1 || issues[0].Position.Line != 3 {
		t.Fatalf("expected the single Config spelling to be flagged, got %+v", issues)
	}
}

func TestRuleNamingConsistencyIgnoresUnrelatedWords(t *testing.T) {
	r := NewRuleNamingConsistency(DefaultNamingOptions()).(CorpusRule)
	units := collect(funcUnits("listPods", "listPod", "listNodes", "run"))

	issues, err := r.CheckAll(units)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("plurals and unrelated words are not abbreviations: %+v", issues)
	}
}

func TestRuleNamingConsistencyCompoundWords(t *testing.T) {
	r := NewRuleNamingConsistency(DefaultNamingOptions()).(CorpusRule)
	pairs := [][]string{
		{"GetName", "GetNamespace"},
		{"getTime", "getTimeout"},
		{"setPort", "setPortal"},
		{"newInformer", "newIndexer"},
	}
	for _, names := range pairs {
		issues, err := r.CheckAll(collect(funcUnits(names...)))
		if err != nil {
			t.Fatalf("check %v: %v", names, err)
		}
		if len(issues) != 0 {
			t.Errorf("%v are different words, got %+v", names, issues)
		}
	}
}

func TestRuleNamingConsistencyPrefixAbbreviation(t *testing.T) {
	r := NewRuleNamingConsistency(DefaultNamingOptions()).(CorpusRule)
	units := collect(funcUnits("loadConf", "loadConfig", "loadConfig"))

	issues, err := r.CheckAll(units)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 1 || issues[0].Position.Line != 1 {
		t.Fatalf("expected loadConf to be flagged, got %+v", issues)
	}
}

func TestRuleNamingConsistencyExtraWords(t *testing.T) {
	units := collect(funcUnits("openConf", "openConfig"))

	issues, _ := NewRuleNamingConsistency(DefaultNamingOptions()).(CorpusRule).CheckAll(units)
	if len(issues) != 1 {
		t.Fatalf("expected one finding without extra words, got %+v", issues)
	}
	r := NewRuleNamingConsistency(NamingOptions{MinAbbrevLen: 2, Words: []string{"IG"}}).(CorpusRule)
	issues, err := r.CheckAll(units)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("configured words must end a compound: %+v", issues)
	}
}

func TestRuleNamingConsistencyIgnoreList(t *testing.T) {
	r := NewRuleNamingConsistency(NamingOptions{MinAbbrevLen: 2, Ignore: []string{"INTF"}}).(CorpusRule)
	units := collect(funcUnits("getIntfByIP", "getInterfaceByIP"))

	issues, err := r.CheckAll(units)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("ignored words must not be compared: %+v", issues)
	}
}

func TestRuleNamingConsistencyThroughEngine(t *testing.T) {
	rules := NewRuleSet(NewRuleNamingConsistency(DefaultNamingOptions()))
	first := Aggregate(NewEngine(rules).Run(context.Background(), funcUnits("getInterfaceByName", "getIntfByIP", "getInterfaceByIP")))
	second := Aggregate(NewEngine(rules).Run(context.Background(), funcUnits("getInterfaceByName", "getIntfByIP", "getInterfaceByIP")))
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("repeated runs should agree: %+v vs %+v", first, second)
	}
}

func collect(seq func(func(Unit) bool)) []Unit {
	var out []Unit
	for u := range seq {
		out = append(out, u)
	}
	return out
}
