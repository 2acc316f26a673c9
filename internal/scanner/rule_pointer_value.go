package scanner

import "fmt"

type PointerValueOptions struct {
	// MaxStructFields is the largest struct that may be passed by value without a finding.
	MaxStructFields int
}

func DefaultPointerValueOptions() PointerValueOptions {
	return PointerValueOptions{MaxStructFields: 8}
}

// Detect pointers to reference-like types (slices, maps, channels, funcs,
// interfaces) and large structs copied by value.
type rulePointerValue struct {
	maxFields int
}

func NewRulePointerValue(opts PointerValueOptions) Rule {
	if opts.MaxStructFields <= 0 {
		opts = DefaultPointerValueOptions()
	}
	return &rulePointerValue{maxFields: opts.MaxStructFields}
}

func (r *rulePointerValue) ID() string        { return RulePointerValueID }
func (r *rulePointerValue) Kinds() []UnitKind { return []UnitKind{KindFunction, KindStructField} }
func (r *rulePointerValue) Description() string {
	return "Do not pass reference types by pointer or large structs by value"
}

func (r *rulePointerValue) Check(u Unit) ([]Finding, error) {
	switch u.Kind {
	case KindFunction:
		if u.Function == nil {
			return nil, fmt.Errorf("unit of kind %s has no function payload", u.Kind)
		}
		return r.checkFunction(u.Function), nil
	case KindStructField:
		if u.Field == nil {
			return nil, fmt.Errorf("unit of kind %s has no field payload", u.Kind)
		}
		f := u.Field
		if f.Field.Pointer && f.Field.Category == CategoryReference {
			return []Finding{r.finding(f.Field.Position, "field %s.%s is a pointer to reference type %s", f.Struct, f.Field.Name, f.Field.Type)}, nil
		}
	}
	return nil, nil
}

func (r *rulePointerValue) checkFunction(fn *FunctionUnit) []Finding {
	var issues []Finding
	if rc := fn.Receiver; rc != nil && !rc.Pointer && rc.Category == CategoryStruct && rc.Fields > r.maxFields {
		issues = append(issues, r.finding(rc.Position, "%s has a value receiver of %s with %d fields; use a pointer receiver", fn.Name, rc.Type, rc.Fields))
	}
	for i, p := range fn.Params {
		switch {
		case p.Pointer && p.Category == CategoryReference:
			issues = append(issues, r.finding(p.Position, "%s: parameter %s is a pointer to reference type %s", fn.Name, label(p, i), p.Type))
		case !p.Pointer && p.Category == CategoryStruct && p.Fields > r.maxFields:
			issues = append(issues, r.finding(p.Position, "%s: parameter %s passes %s (%d fields) by value", fn.Name, label(p, i), p.Type, p.Fields))
		}
	}
	for i, p := range fn.Results {
		if p.Pointer && p.Category == CategoryReference {
			issues = append(issues, r.finding(p.Position, "%s: result %s is a pointer to reference type %s", fn.Name, label(p, i), p.Type))
		}
	}
	return issues
}

func (r *rulePointerValue) finding(pos Position, format string, args ...any) Finding {
	return Finding{RuleID: r.ID(), Severity: SeverityInfo, Position: pos, Message: fmt.Sprintf(format, args...)}
}

func label(p Param, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("#%d", i+1)
}
