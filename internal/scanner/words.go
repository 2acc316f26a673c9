package scanner

import (
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
)

// SplitWords splits an identifier into words on underscores and case
// changes, keeping acronyms together: getIntfByIP -> get Intf By IP,
// HTTPServer -> HTTP Server.
func SplitWords(name string) []string {
	rs := []rune(name)
	var words []string
	start := 0
	flush := func(end int) {
		if end > start {
			words = append(words, string(rs[start:end]))
		}
		start = end
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '_' || r == '-' {
			flush(i)
			start = i + 1
			continue
		}
		if i == start || !unicode.IsUpper(r) {
			continue
		}
		prev := rs[i-1]
		switch {
		case unicode.IsLower(prev) || unicode.IsDigit(prev):
			flush(i)
		case unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			flush(i)
		}
	}
	flush(len(rs))
	return words
}

// isAbbreviation reports whether short abbreviates long: same first letter,
// short is a subsequence of long and at least minLen letters. Plural pairs
// (pod/pods, box/boxes) are not abbreviations.
func isAbbreviation(short, long string, minLen int) bool {
	short, long = strings.ToLower(short), strings.ToLower(long)
	if len(short) < minLen || len(short) >= len(long) {
		return false
	}
	if short[0] != long[0] {
		return false
	}
	if long == short+"s" || long == short+"es" {
		return false
	}
	j := 0
	for i := 0; i < len(long) && j < len(short); i++ {
		if long[i] == short[j] {
			j++
		}
	}
	return j == len(short)
}

// commonWords are whole words often found inside identifiers. A spelling that
// is one of them, or a longer spelling that only adds one of them, is a
// different word rather than an abbreviation: name/namespace, time/timeout.
var commonWords = []string{
	"all", "back", "base", "bind", "block", "body", "book", "call", "case",
	"check", "class", "code", "count", "data", "date", "day", "down", "end",
	"event", "field", "file", "flag", "form", "get", "group", "hand", "head",
	"host", "in", "index", "item", "job", "key", "kind", "label", "line",
	"link", "list", "load", "lock", "log", "map", "mark", "mode", "name",
	"node", "note", "off", "on", "out", "over", "owner", "page", "pass",
	"path", "point", "port", "post", "read", "rule", "run", "save", "send",
	"set", "side", "size", "sort", "space", "span", "start", "state", "step",
	"stop", "store", "tag", "task", "text", "time", "top", "type", "up",
	"user", "view", "wait", "watch", "way", "word", "work", "write", "zone",
}

// isCompound reports whether long is short plus more letters with either part
// a known word, as in name+space or time+out.
func isCompound(short, long string, words mapset.Set[string]) bool {
	short, long = strings.ToLower(short), strings.ToLower(long)
	if len(short) >= len(long) || !strings.HasPrefix(long, short) {
		return false
	}
	return words.Contains(short) || words.Contains(long[len(short):])
}

// isAcronym reports whether w is at least two letters, all of them upper case.
func isAcronym(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

// firstWord returns the leading run of letters and digits of s.
func firstWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if end < 0 {
		return s
	}
	return s[:end]
}
