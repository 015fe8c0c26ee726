package soundchange

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
)

// Options tune how notation is resolved and how words are prepared.
type Options struct {
	// LegacyNegatedReferences makes %X match non-members of X, like !%X. Older
	// rule sets were written against an engine that behaved this way.
	LegacyNegatedReferences bool `yaml:"legacy_negated_references,omitempty"`

	// Normalization is the Unicode form applied to words, groups and rules:
	// "nfc" (the default), "nfd" or "none".
	Normalization string `yaml:"normalization,omitempty"`
}

// captureName names the capture around member i of the n-th group reference
// of a seek pattern.
func captureName(n, i int) string {
	return fmt.Sprintf("sc%d_%d", n, i)
}

// parseCaptureName is the inverse of captureName.
func parseCaptureName(name string) (n, i int, ok bool) {
	if _, err := fmt.Sscanf(name, "sc%d_%d", &n, &i); err != nil {
		return 0, 0, false
	}
	return n, i, true
}

// render turns a notation into a pattern expression. With capture set, each
// member of an affirmative group reference gets its own named capture, so a
// match tells which member of which reference it consumed.
func (o Options) render(n Notation, capture bool) string {
	var b strings.Builder
	groupNo := 0
	for _, tok := range n {
		switch tok.Kind {
		case RawToken, SpanToken:
			b.WriteString(tok.Text)
		case LiteralToken:
			b.WriteString(coregex.QuoteMeta(tok.Text))
		case GroupToken:
			negated := tok.Negated || o.LegacyNegatedReferences
			if capture && !negated {
				b.WriteString(memberCaptures(tok.Run, groupNo))
			} else {
				b.WriteString(groupClass(tok.Run, negated))
			}
			groupNo++
		}
	}
	return b.String()
}

// ResolveClass expands the group references of notation and compiles the
// result into a single pattern. A notation that does not form a valid pattern
// yields a pattern that never matches.
func ResolveClass(notation string, groups *Groups, opts Options) *Pattern {
	return compilePattern(opts.render(ParseNotation(notation, groups), false))
}

// ResolveTokens parses notation for correspondence use: group references keep
// their ordered runs so they can later be paired by position.
func ResolveTokens(notation string, groups *Groups) Notation {
	return ParseNotation(notation, groups)
}
