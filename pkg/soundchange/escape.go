package soundchange

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex"
)

// escapeClassMember escapes s so it can sit inside a bracketed character class.
// Only ASCII punctuation needs escaping; anything else is copied as is.
func escapeClassMember(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isASCIIPunct(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isASCIIPunct(r rune) bool {
	switch {
	case r < '!' || r > '~':
		return false
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return false
	}
	return true
}

// groupClass renders a run as a pattern matching one member, or one non-member
// when negated.
//
// Runs made of single code points become a character class. A run holding
// multi-code-point graphemes becomes an alternation, longest grapheme first, so
// "ts" wins over "t". A negated class cannot express "not this sequence", so
// the negated form of such a run excludes every code point of every member.
func groupClass(run Run, negated bool) string {
	if negated {
		return "[^" + escapeClassMember(strings.Join(run, "")) + "]"
	}
	if !run.multiRune() {
		return "[" + escapeClassMember(strings.Join(run, "")) + "]"
	}
	alts := make([]string, len(run))
	for i, m := range longestFirst(run) {
		alts[i] = coregex.QuoteMeta(run[m])
	}
	return "(?:" + strings.Join(alts, "|") + ")"
}

// memberCaptures renders the n-th group reference of a pattern as an
// alternation with one named capture per member.
func memberCaptures(run Run, n int) string {
	alts := make([]string, len(run))
	for i, m := range longestFirst(run) {
		alts[i] = fmt.Sprintf("(?P<%s>%s)", captureName(n, m), coregex.QuoteMeta(run[m]))
	}
	return "(?:" + strings.Join(alts, "|") + ")"
}

// longestFirst returns the member indices of run ordered by decreasing length,
// keeping run order among members of equal length.
func longestFirst(run Run) []int {
	order := make([]int, len(run))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return utf8.RuneCountInString(run[order[i]]) > utf8.RuneCountInString(run[order[j]])
	})
	return order
}
