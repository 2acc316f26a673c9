package scanner

import (
	"strings"
	"testing"
)

func TestRulePointerValue(t *testing.T) {
	r := NewRulePointerValue(PointerValueOptions{MaxStructFields: 3}).(UnitRule)
	pos := func(line int) Position { return Position{File: "a.go", Line: line} }

	fn := Unit{Kind: KindFunction, Position: pos(1), Function: &FunctionUnit{
		Name:     "Apply",
		Receiver: &Param{Name: "c", Type: "Controller", Category: CategoryStruct, Fields: 5, Position: pos(1)},
		Params: []Param{
			{Name: "items", Type: "*[]string", Pointer: true, Category: CategoryReference, Position: pos(2)},
			{Name: "m", Type: "map[string]int", Category: CategoryReference, Position: pos(3)},
			{Name: "opts", Type: "Options", Category: CategoryStruct, Fields: 4, Position: pos(4)},
			{Name: "small", Type: "Point", Category: CategoryStruct, Fields: 2, Position: pos(5)},
			{Name: "big", Type: "*Options", Pointer: true, Category: CategoryStruct, Fields: 4, Position: pos(6)},
			{Type: "*context.Context", Pointer: true, Category: CategoryReference, Position: pos(7)},
		},
		Results: []Param{
			{Type: "*map[string]int", Pointer: true, Category: CategoryReference, Position: pos(8)},
			{Type: "error", Category: CategoryReference, Position: pos(8)},
		},
	}}

	issues, err := r.Check(fn)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var lines []int
	for _, is := range issues {
		lines = append(lines, is.Position.Line)
		if is.Severity != SeverityInfo {
			t.Fatalf("pointer-value findings are info, got %s", is.Severity)
		}
	}
	want := []int{1, 2, 4, 7, 8}
	if len(lines) != len(want) {
		t.Fatalf("expected findings at lines %v, got %v (%+v)", want, lines, issues)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("expected findings at lines %v, got %v", want, lines)
		}
	}
	if !strings.Contains(issues[3].Message, "parameter #6") {
		t.Fatalf("unnamed parameters are labelled by position: %q", issues[3].Message)
	}
}

func TestRulePointerValueField(t *testing.T) {
	r := NewRulePointerValue(DefaultPointerValueOptions()).(UnitRule)
	field := Unit{Kind: KindStructField, Position: Position{File: "a.go", Line: 9}, Field: &FieldUnit{
		Struct: "Cache",
		Field:  Param{Name: "entries", Type: "*map[string]string", Pointer: true, Category: CategoryReference, Position: Position{File: "a.go", Line: 9}},
	}}
	issues, err := r.Check(field)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(issues) != 1 || issues[0].Message != "field Cache.entries is a pointer to reference type *map[string]string" {
		t.Fatalf("unexpected findings %+v", issues)
	}

	field.Field.Field.Pointer = false
	if issues, _ := r.Check(field); len(issues) != 0 {
		t.Fatalf("a plain map field is fine, got %+v", issues)
	}
}
