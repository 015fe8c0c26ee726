package soundchange

import (
	"regexp/syntax"

	"github.com/coregx/coregex"
)

// Pattern is a compiled matcher. A nil Pattern, or one whose expression did not
// compile, never matches.
type Pattern struct {
	re   *coregex.Regex
	expr string
}

// compilePattern compiles expr. Compilation errors are traced and yield a
// pattern that matches nothing.
func compilePattern(expr string) *Pattern {
	re, err := coregex.Compile(expr)
	if err != nil {
		TC().P("pattern", expr).Errorf("pattern does not compile, rule will not match: %v", err)
		return &Pattern{expr: expr}
	}
	return &Pattern{re: re, expr: expr}
}

// Valid is false for patterns that failed to compile.
func (p *Pattern) Valid() bool {
	return p != nil && p.re != nil
}

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) bool {
	if !p.Valid() {
		return false
	}
	return p.re.MatchString(s)
}

// String returns the source expression.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// findFrom returns the submatch index pairs of the leftmost match starting at or
// after byte offset from, in coordinates of s.
func (p *Pattern) findFrom(s string, from int) []int {
	if !p.Valid() || from > len(s) {
		return nil
	}
	loc := p.re.FindStringSubmatchIndex(s[from:])
	if loc == nil {
		return nil
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += from
		}
	}
	return loc
}

// submatch returns the index pairs of a match of p against the whole of s.
func (p *Pattern) submatch(s string) []int {
	if !p.Valid() {
		return nil
	}
	return p.re.FindStringSubmatchIndex(s)
}

func (p *Pattern) subexpNames() []string {
	if !p.Valid() {
		return nil
	}
	return p.re.SubexpNames()
}

// anchoredCapture compiles expr anchored at both ends, for recovering the
// submatches of text already known to match expr. Captures inside a
// repetition are unrolled by lastIteration. It returns nil when expr has no
// such captures, as then the spans of the locating match can be used as is.
func anchoredCapture(expr string) *Pattern {
	unrolled, ok := lastIteration("^(?:" + expr + ")$")
	if !ok {
		return nil
	}
	return compilePattern(unrolled)
}

// lastIteration rewrites expr so that no capture sits inside a repetition.
// X+ becomes (?:X)*X with the captures kept only in the trailing copy, so
// that against a fully anchored input they report the last iteration. It
// reports false when nothing needs rewriting or expr does not parse.
func lastIteration(expr string) (string, bool) {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil || !repeatsCapture(re, false) {
		return "", false
	}
	return unrollCaptures(re).String(), true
}

func isRepetition(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpStar, syntax.OpPlus:
		return true
	case syntax.OpRepeat:
		return re.Max == -1 || re.Max > 1
	}
	return false
}

func repeatsCapture(re *syntax.Regexp, repeated bool) bool {
	if re.Op == syntax.OpCapture && repeated {
		return true
	}
	repeated = repeated || isRepetition(re)
	for _, sub := range re.Sub {
		if repeatsCapture(sub, repeated) {
			return true
		}
	}
	return false
}

func hasCapture(re *syntax.Regexp) bool {
	if re.Op == syntax.OpCapture {
		return true
	}
	for _, sub := range re.Sub {
		if hasCapture(sub) {
			return true
		}
	}
	return false
}

// unrollCaptures works bottom-up, so nested repetitions are unrolled before
// the repetition around them.
func unrollCaptures(re *syntax.Regexp) *syntax.Regexp {
	for i, sub := range re.Sub {
		re.Sub[i] = unrollCaptures(sub)
	}
	if !isRepetition(re) || !hasCapture(re.Sub[0]) {
		return re
	}
	body := re.Sub[0]
	rest := &syntax.Regexp{
		Op:    re.Op,
		Flags: re.Flags,
		Min:   re.Min,
		Max:   re.Max,
		Sub:   []*syntax.Regexp{stripCaptures(body)},
	}
	optional := false
	switch re.Op {
	case syntax.OpPlus:
		rest.Op = syntax.OpStar
	case syntax.OpStar:
		optional = true
	case syntax.OpRepeat:
		rest.Min = max(re.Min-1, 0)
		if re.Max > 0 {
			rest.Max = re.Max - 1
		}
		optional = re.Min == 0
	}
	out := &syntax.Regexp{Op: syntax.OpConcat, Flags: re.Flags, Sub: []*syntax.Regexp{rest, body}}
	if optional {
		out = &syntax.Regexp{Op: syntax.OpQuest, Flags: re.Flags, Sub: []*syntax.Regexp{out}}
	}
	return out
}

// stripCaptures returns a copy of re with every capture made non-capturing.
func stripCaptures(re *syntax.Regexp) *syntax.Regexp {
	if re.Op == syntax.OpCapture {
		return stripCaptures(re.Sub[0])
	}
	cp := *re
	cp.Sub = make([]*syntax.Regexp, len(re.Sub))
	for i, sub := range re.Sub {
		cp.Sub[i] = stripCaptures(sub)
	}
	return &cp
}
