package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

// Key casing styles recognized by the log-keys rule.
const (
	KeyStyleAuto   = "auto"
	KeyStyleCamel  = "camel"
	KeyStyleKebab  = "kebab"
	KeyStylePascal = "pascal"
	KeyStyleSnake  = "snake"

	keyStyleOther = "other"
)

var keyStyles = []string{KeyStyleCamel, KeyStyleKebab, KeyStylePascal, KeyStyleSnake}

var (
	snakeKey  = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)+$`)
	kebabKey  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)+$`)
	camelKey  = regexp.MustCompile(`^[a-z][a-z0-9]*[A-Z][A-Za-z0-9]*$`)
	pascalKey = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*[a-z][A-Za-z0-9]*$`)
)

type LogKeyOptions struct {
	// Style is one of auto, camel, kebab, pascal or snake. Auto uses the codebase majority.
	Style string
}

func DefaultLogKeyOptions() LogKeyOptions { return LogKeyOptions{Style: KeyStyleAuto} }

// ValidKeyStyle reports whether s names a style LogKeyOptions accepts.
func ValidKeyStyle(s string) bool {
	if s == KeyStyleAuto {
		return true
	}
	for _, k := range keyStyles {
		if k == s {
			return true
		}
	}
	return false
}

// Log calls pass values as key-value pairs, and multi-word keys share one casing.
type ruleLogKeys struct {
	style string
}

func NewRuleLogKeys(opts LogKeyOptions) Rule {
	if opts.Style == "" {
		opts.Style = KeyStyleAuto
	}
	return &ruleLogKeys{style: opts.Style}
}

func (r *ruleLogKeys) ID() string        { return RuleLogKeysID }
func (r *ruleLogKeys) Kinds() []UnitKind { return []UnitKind{KindLogCall} }
func (r *ruleLogKeys) Description() string {
	return "Log with key-value pairs, not interpolated messages, and keep key casing consistent"
}

type styledKey struct {
	key   LogKey
	style string
}

func (r *ruleLogKeys) CheckAll(units []Unit) ([]Finding, error) {
	var issues []Finding
	var keys []styledKey
	counts := map[string]int{}
	for _, u := range units {
		lc := u.LogCall
		if lc == nil {
			continue
		}
		if lc.Interpolated {
			issues = append(issues, Finding{
				RuleID:   r.ID(),
				Severity: SeverityWarning,
				Position: u.Position,
				Message:  fmt.Sprintf("%s builds its message by interpolation; pass values as key-value pairs", lc.Callee),
			})
		}
		for _, k := range lc.Keys {
			style, multi := keyStyle(k.Name)
			if !multi {
				continue
			}
			keys = append(keys, styledKey{key: k, style: style})
			if style != keyStyleOther {
				counts[style]++
			}
		}
	}

	want := r.style
	if want == KeyStyleAuto {
		want = ""
		for _, s := range keyStyles {
			if counts[s] > counts[want] {
				want = s
			}
		}
	}

	for _, k := range keys {
		switch {
		case k.style == keyStyleOther:
			issues = append(issues, Finding{
				RuleID:   r.ID(),
				Severity: SeverityInfo,
				Position: k.key.Position,
				Message:  fmt.Sprintf("log key %q mixes casing conventions", k.key.Name),
			})
		case want != "" && k.style != want:
			issues = append(issues, Finding{
				RuleID:   r.ID(),
				Severity: SeverityInfo,
				Position: k.key.Position,
				Message:  fmt.Sprintf("log key %q is %s case; use %s case keys", k.key.Name, k.style, want),
			})
		}
	}
	return issues, nil
}

// keyStyle classifies a key; dotted namespaces (http.method) are judged per segment.
// multi is false for single-word keys, which fit any style.
func keyStyle(key string) (style string, multi bool) {
	for _, seg := range strings.Split(key, ".") {
		s, m := segmentStyle(seg)
		if !m {
			continue
		}
		if multi && s != style {
			return keyStyleOther, true
		}
		style, multi = s, true
	}
	return style, multi
}

func segmentStyle(seg string) (string, bool) {
	switch {
	case snakeKey.MatchString(seg):
		return KeyStyleSnake, true
	case kebabKey.MatchString(seg):
		return KeyStyleKebab, true
	case camelKey.MatchString(seg):
		return KeyStyleCamel, true
	case pascalKey.MatchString(seg) && len(SplitWords(seg)) > 1:
		return KeyStylePascal, true
	}
	if strings.ContainsAny(seg, "_- ") || len(SplitWords(seg)) > 1 {
		return keyStyleOther, true
	}
	return "", false
}
