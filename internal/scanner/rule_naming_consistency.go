package scanner

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// NamingOptions tunes abbreviation detection.
type NamingOptions struct {
	// MinAbbrevLen is the shortest spelling treated as an abbreviation.
	MinAbbrevLen int
	// Ignore lists words (case-insensitive) never compared for abbreviation.
	Ignore []string
	// Words extends the built-in list of whole words that a longer spelling
	// may start with or end in without abbreviating it.
	Words []string
}

func DefaultNamingOptions() NamingOptions { return NamingOptions{MinAbbrevLen: 2} }

// Detect the same word abbreviated differently across function names sharing a shape,
// e.g. getInterfaceByIP next to getIntfByIP.
type ruleNamingConsistency struct {
	minLen int
	ignore mapset.Set[string]
	words  mapset.Set[string]
}

func NewRuleNamingConsistency(opts NamingOptions) Rule {
	ignore := mapset.NewSet[string]()
	for _, w := range opts.Ignore {
		ignore.Add(strings.ToLower(w))
	}
	minLen := opts.MinAbbrevLen
	if minLen < 1 {
		minLen = DefaultNamingOptions().MinAbbrevLen
	}
	words := mapset.NewSet(commonWords...)
	for _, w := range opts.Words {
		words.Add(strings.ToLower(w))
	}
	return &ruleNamingConsistency{minLen: minLen, ignore: ignore, words: words}
}

func (r *ruleNamingConsistency) ID() string        { return RuleNamingConsistencyID }
func (r *ruleNamingConsistency) Kinds() []UnitKind { return []UnitKind{KindFunction} }

func (r *ruleNamingConsistency) Description() string {
	return "Abbreviate a word the same way in every function name"
}

type wordUse struct {
	unit Unit
	word string
	norm string
}

func (r *ruleNamingConsistency) CheckAll(units []Unit) ([]Finding, error) {
	buckets := map[string][]wordUse{}
	for _, u := range units {
		if u.Function == nil {
			continue
		}
		words := SplitWords(u.Function.Name)
		if len(words) < 2 {
			continue
		}
		lower := make([]string, len(words))
		for i, w := range words {
			lower[i] = strings.ToLower(w)
		}
		for i := range words {
			key := make([]string, len(lower))
			copy(key, lower)
			key[i] = "*"
			k := strings.Join(key, "|")
			buckets[k] = append(buckets[k], wordUse{unit: u, word: words[i], norm: lower[i]})
		}
	}

	var issues []Finding
	for _, k := range slices.Sorted(maps.Keys(buckets)) {
		issues = append(issues, r.checkBucket(buckets[k])...)
	}
	return issues, nil
}

func (r *ruleNamingConsistency) checkBucket(uses []wordUse) []Finding {
	counts := map[string]int{}
	spelled := map[string]mapset.Set[string]{}
	for _, use := range uses {
		counts[use.norm]++
		if spelled[use.norm] == nil {
			spelled[use.norm] = mapset.NewSet[string]()
		}
		spelled[use.norm].Add(use.word)
	}
	if len(counts) < 2 {
		return nil
	}
	norms := slices.Sorted(maps.Keys(counts))

	// union-find over spellings that abbreviate one another
	parent := make(map[string]string, len(norms))
	var find func(string) string
	find = func(s string) string {
		if parent[s] == s {
			return s
		}
		parent[s] = find(parent[s])
		return parent[s]
	}
	for _, n := range norms {
		parent[n] = n
	}
	for i, a := range norms {
		if r.ignore.Contains(a) {
			continue
		}
		for _, b := range norms[i+1:] {
			if r.ignore.Contains(b) {
				continue
			}
			if r.abbreviates(a, b) || r.abbreviates(b, a) {
				parent[find(a)] = find(b)
			}
		}
	}
	clusters := map[string][]string{}
	for _, n := range norms {
		root := find(n)
		clusters[root] = append(clusters[root], n)
	}

	var issues []Finding
	for _, root := range slices.Sorted(maps.Keys(clusters)) {
		members := clusters[root]
		if len(members) < 2 {
			continue
		}
		canonical := members[0]
		for _, m := range members[1:] {
			if counts[m] > counts[canonical] {
				canonical = m
			}
		}
		spellings := spelled[canonical].ToSlice()
		slices.Sort(spellings)
		want := spellings[0]
		for _, use := range uses {
			if use.norm == canonical || !slices.Contains(members, use.norm) {
				continue
			}
			issues = append(issues, Finding{
				RuleID:   r.ID(),
				Severity: SeverityWarning,
				Position: use.unit.Position,
				Message:  fmt.Sprintf("%s spells %q where other functions of the same shape use %q", use.unit.Function.Name, use.word, want),
			})
		}
	}
	return issues
}

func (r *ruleNamingConsistency) abbreviates(short, long string) bool {
	return isAbbreviation(short, long, r.minLen) && !isCompound(short, long, r.words)
}
