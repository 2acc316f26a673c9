package scanner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
)

// ErrorStringOptions configures which capitalized leading words are acceptable.
type ErrorStringOptions struct {
	// AllowedWords are proper nouns and mixed-case acronyms an error string may start with.
	AllowedWords []string
}

func DefaultErrorStringOptions() ErrorStringOptions {
	return ErrorStringOptions{AllowedWords: []string{"Go", "GitHub", "IPv4", "IPv6", "Kubernetes", "Linux", "OpenFlow", "Windows"}}
}

// Error strings start lower case (acronyms and proper nouns aside) and carry no trailing period,
// since they are usually wrapped or printed after other context.
type ruleErrorStrings struct {
	allowed mapset.Set[string]
}

func NewRuleErrorStrings(opts ErrorStringOptions) Rule {
	return &ruleErrorStrings{allowed: mapset.NewSet(opts.AllowedWords...)}
}

func (r *ruleErrorStrings) ID() string        { return RuleErrorStringsID }
func (r *ruleErrorStrings) Kinds() []UnitKind { return []UnitKind{KindErrorString} }
func (r *ruleErrorStrings) Description() string {
	return "Error strings should not be capitalized or end with punctuation"
}

func (r *ruleErrorStrings) Check(u Unit) ([]Finding, error) {
	es := u.ErrorString
	if es == nil {
		return nil, fmt.Errorf("unit of kind %s has no error string payload", u.Kind)
	}
	var issues []Finding
	text := es.Text
	if first, _ := utf8.DecodeRuneInString(text); unicode.IsUpper(first) {
		word := firstWord(text)
		if !isAcronym(word) && !r.allowed.Contains(word) {
			issues = append(issues, Finding{
				RuleID:   r.ID(),
				Severity: SeverityWarning,
				Position: u.Position,
				Message:  fmt.Sprintf("error string passed to %s should not be capitalized (starts with %q)", es.Constructor, word),
			})
		}
	}
	if strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "...") {
		issues = append(issues, Finding{
			RuleID:   r.ID(),
			Severity: SeverityWarning,
			Position: u.Position,
			Message:  fmt.Sprintf("error string passed to %s should not end with a period", es.Constructor),
		})
	}
	return issues, nil
}
