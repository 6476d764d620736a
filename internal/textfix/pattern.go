// Package textfix holds the malformation detectors and the whole-text fixers
// used by the repair engine.
package textfix

import (
	"regexp"
	"strings"
)

// contextPattern is a regular expression with a left context (a lookbehind)
// and a right context (a lookahead). RE2 has neither, so the left context is
// a predicate over the text before a candidate position and the right
// context is matched by body without being replaced or consumed.
//
// body must be anchored with ^ and wrap the replaceable part in group 1.
// With outsideStrings set, positions inside a double-quoted string never
// match.
type contextPattern struct {
	left           func(before string) bool
	body           *regexp.Regexp
	outsideStrings bool
}

// next returns the submatch indexes of the leftmost match at or after from,
// relative to s, or nil. quoted is s's mask from quotedMask, or nil.
func (p contextPattern) next(s string, from int, quoted []bool) []int {
	for i := from; i < len(s); i++ {
		if quoted != nil && quoted[i] {
			continue
		}
		if !p.left(s[:i]) {
			continue
		}
		loc := p.body.FindStringSubmatchIndex(s[i:])
		if loc == nil {
			continue
		}
		for k := range loc {
			if loc[k] >= 0 {
				loc[k] += i
			}
		}
		return loc
	}
	return nil
}

func (p contextPattern) matches(s string) bool { return p.next(s, 0, p.mask(s)) != nil }

func (p contextPattern) mask(s string) []bool {
	if !p.outsideStrings {
		return nil
	}
	return quotedMask(s)
}

// quotedMask marks the bytes of s that lie inside a double-quoted string,
// opening quote excluded and closing quote included.
func quotedMask(s string) []bool {
	m := make([]bool, len(s))
	in, esc := false, false
	for i := 0; i < len(s); i++ {
		m[i] = in
		switch c := s[i]; {
		case esc:
			esc = false
		case c == '\\' && in:
			esc = true
		case c == '"':
			in = !in
		}
	}
	return m
}

// replaceAll substitutes every non-overlapping group 1 span. Scanning resumes
// right after the replaced span, so a right context stays available as the
// next match's left context.
func (p contextPattern) replaceAll(s string, repl func(s string, loc []int) string) string {
	quoted := p.mask(s)
	loc := p.next(s, 0, quoted)
	if loc == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for loc != nil {
		b.WriteString(s[last:loc[2]])
		b.WriteString(repl(s, loc))
		last = loc[3]
		pos := loc[3]
		if loc[3] == loc[2] {
			pos++
		}
		loc = p.next(s, pos, quoted)
	}
	b.WriteString(s[last:])
	return b.String()
}

// group returns submatch n of loc, or "" when it did not participate.
func group(s string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

// afterAny accepts positions preceded by one of the bytes in set.
func afterAny(set string) func(string) bool {
	return func(before string) bool {
		return before != "" && strings.IndexByte(set, before[len(before)-1]) >= 0
	}
}

// afterSuffix accepts positions preceded by one of the given suffixes.
func afterSuffix(suffixes ...string) func(string) bool {
	return func(before string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(before, s) {
				return true
			}
		}
		return false
	}
}
