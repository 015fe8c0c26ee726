package soundchange

import (
	"strings"
	"testing"
)

func rewrite(t *testing.T, groups *Groups, rule SoundChangeRule, word string) string {
	t.Helper()
	return NewCompiler(groups, Options{}).CompileRule(rule).Rewrite(word)
}

func TestCorrespondencePairing(t *testing.T) {
	groups := MustGroups(
		CharacterGroup{Label: "V", Run: Run{"a", "e"}},
		CharacterGroup{Label: "v", Run: Run{"ä", "ë"}},
	)
	rule := SoundChangeRule{Seek: "%V", Replace: "%v"}
	tests := []struct {
		input, expected string
	}{
		{"ba", "bä"},
		{"be", "bë"},
		{"bae", "bäë"},
		{"bu", "bu"},
	}
	for _, tt := range tests {
		if got := rewrite(t, groups, rule, tt.input); got != tt.expected {
			t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestCorrespondenceWrapsAround(t *testing.T) {
	groups := MustGroups(
		CharacterGroup{Label: "V", Run: Run{"a", "e", "i"}},
		CharacterGroup{Label: "v", Run: Run{"x", "y"}},
	)
	got := rewrite(t, groups, SoundChangeRule{Seek: "%V", Replace: "%v"}, "aei")
	if got != "xyx" {
		t.Errorf("Expected index modulo run length to give xyx, got %q", got)
	}
}

func TestCorrespondenceWithLiterals(t *testing.T) {
	tests := []struct {
		rule            SoundChangeRule
		input, expected string
	}{
		{SoundChangeRule{Seek: "%Vn", Replace: "%vm"}, "ban", "bäm"},
		{SoundChangeRule{Seek: "%Vn", Replace: `%v\%`}, "ben", "bë%"},
		{SoundChangeRule{Seek: "(%V)n", Replace: "%v$1"}, "ban", "bäa"},
		{SoundChangeRule{Seek: "%V%V", Replace: "%v"}, "bea", "bë"},
		{SoundChangeRule{Seek: "%V+", Replace: "%v"}, "bae", "b\u00eb"},
		{SoundChangeRule{Seek: "%V+", Replace: "%v"}, "bea", "b\u00e4"},
		{SoundChangeRule{Seek: "%V+", Replace: "%v"}, "baae", "b\u00eb"},
		{SoundChangeRule{Seek: "(%V)n", Replace: "%v${1}"}, "ban", "b\u00e4a"},
		{SoundChangeRule{Seek: "!%Vt", Replace: "%v"}, "xt", "\u00e4"},
	}
	for _, tt := range tests {
		t.Run(tt.rule.Label(), func(t *testing.T) {
			if got := rewrite(t, vowels(), tt.rule, tt.input); got != tt.expected {
				t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestCorrespondenceMultiCodepointRun(t *testing.T) {
	groups := MustGroups(
		CharacterGroup{Label: "T", Run: Run{"ts", "t"}},
		CharacterGroup{Label: "D", Run: Run{"dz", "d"}},
	)
	tests := []struct {
		seek            string
		input, expected string
	}{
		{"%T", "atsa", "adza"},
		{"%T", "ata", "ada"},
		{"%T", "tst", "dzd"},
		{"%T+", "atsta", "ada"},
		{"%T+", "attsa", "adza"},
	}
	for _, tt := range tests {
		t.Run(tt.seek+"/"+tt.input, func(t *testing.T) {
			got := rewrite(t, groups, SoundChangeRule{Seek: tt.seek, Replace: "%D"}, tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestContextGating(t *testing.T) {
	rule := SoundChangeRule{Seek: "t", Replace: "d", Context: "%V_%V"}
	tests := []struct {
		input, expected string
	}{
		{"ata", "ada"},
		{"atb", "atb"},
		{"ta", "ta"},
		{"atata", "adada"},
	}
	for _, tt := range tests {
		if got := rewrite(t, vowels(), rule, tt.input); got != tt.expected {
			t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestAntiContextSuppression(t *testing.T) {
	rule := SoundChangeRule{Seek: "t", Replace: "d", AntiContext: "_#"}
	tests := []struct {
		input, expected string
	}{
		{"at", "at"},
		{"ata", "ada"},
		{"tat", "dat"},
	}
	for _, tt := range tests {
		if got := rewrite(t, vowels(), rule, tt.input); got != tt.expected {
			t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
		}
	}

	both := SoundChangeRule{Seek: "t", Replace: "d", Context: "%V_", AntiContext: "_#"}
	if got := rewrite(t, vowels(), both, "atat"); got != "adat" {
		t.Errorf("Expected context and anti-context together to give adat, got %q", got)
	}
}

func TestMalformedContextIsUnconstrained(t *testing.T) {
	rule := SoundChangeRule{Seek: "t", Replace: "d", Context: "a_b_c", AntiContext: "nonsense"}
	if got := rewrite(t, vowels(), rule, "tt"); got != "dd" {
		t.Errorf("Expected malformed contexts to be ignored, got %q", got)
	}
}

func TestZeroWidthMatchesTerminate(t *testing.T) {
	tests := []struct {
		rule            SoundChangeRule
		input, expected string
	}{
		{SoundChangeRule{Seek: "x*", Replace: "y"}, "abc", "yaybycy"},
		{SoundChangeRule{Seek: "", Replace: "ə", Context: "t_t"}, "atta", "atəta"},
		{SoundChangeRule{Seek: "", Replace: ""}, "abc", "abc"},
		{SoundChangeRule{Seek: "%V?", Replace: ""}, "banana", "bnn"},
		{SoundChangeRule{Seek: "", Replace: "x", Context: "_#"}, "ab", "abx"},
		{SoundChangeRule{Seek: "", Replace: "x", Context: "#_"}, "ab", "xab"},
		{SoundChangeRule{Seek: "a*", Replace: "aa"}, "a", "aa"},
	}
	for _, tt := range tests {
		t.Run(tt.rule.Label(), func(t *testing.T) {
			if got := rewrite(t, vowels(), tt.rule, tt.input); got != tt.expected {
				t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestZeroWidthOnLongWord(t *testing.T) {
	cr := NewCompiler(vowels(), Options{}).CompileRule(SoundChangeRule{Seek: "%V*", Replace: "%V"})
	word := strings.Repeat("tak", 500)
	out := cr.Rewrite(word)
	if len(out) > 3*len(word) {
		t.Errorf("Expected bounded growth, got %d bytes from %d", len(out), len(word))
	}
}

func TestReplacementTemplates(t *testing.T) {
	tests := []struct {
		rule            SoundChangeRule
		input, expected string
	}{
		{SoundChangeRule{Seek: "(a)(b)", Replace: "$2$1"}, "xaby", "xbay"},
		{SoundChangeRule{Seek: "(a)(b)", Replace: "${2}x$1"}, "ab", "bxa"},
		{SoundChangeRule{Seek: "ab", Replace: "[$&]"}, "abc", "[ab]c"},
		{SoundChangeRule{Seek: "a", Replace: "$$"}, "a", "$"},
		{SoundChangeRule{Seek: "a", Replace: `\$1`}, "a", "$1"},
		{SoundChangeRule{Seek: "a", Replace: "$9"}, "a", "$9"},
		{SoundChangeRule{Seek: "t", Replace: "%V"}, "t", "a"},
		{SoundChangeRule{Seek: "(a|e)+", Replace: "<$1>"}, "bae", "b<e>"},
		{SoundChangeRule{Seek: "(?:(a)|(e))+", Replace: "<$2>"}, "bae", "b<e>"},
		{SoundChangeRule{Seek: "(?:(a)|(e))+", Replace: "<$1$2>"}, "bae", "b<e>"},
		{SoundChangeRule{Seek: "((a)b)+", Replace: "$2$1"}, "abab", "aab"},
	}
	for _, tt := range tests {
		t.Run(tt.rule.Label(), func(t *testing.T) {
			if got := rewrite(t, vowels(), tt.rule, tt.input); got != tt.expected {
				t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestScanResumesAfterInsertedText(t *testing.T) {
	got := rewrite(t, vowels(), SoundChangeRule{Seek: "a", Replace: "aa"}, "aba")
	if got != "aabaa" {
		t.Errorf("Expected inserted text not to be rescanned, got %q", got)
	}
}

func TestInvalidRuleIsNoOp(t *testing.T) {
	for _, rule := range []SoundChangeRule{
		{Seek: "(", Replace: "x"},
		{Seek: "a", Replace: "x", Context: "(_"},
	} {
		if got := rewrite(t, vowels(), rule, "aaa"); got != "aaa" {
			t.Errorf("Expected %s to leave the word alone, got %q", rule.Label(), got)
		}
	}
}

func TestTraceCompleteness(t *testing.T) {
	rs := &RuleSet{
		Groups: []CharacterGroup{{Label: "V", Run: RunFromString("aeiou")}},
		Rules: []SoundChangeRule{
			{ID: "lenition", Seek: "t", Replace: "d", Context: "%V_%V"},
			{ID: "unused", Seek: "x", Replace: "y"},
			{ID: "spirant", Seek: "d", Replace: "ð", Context: "%V_%V"},
		},
	}
	e, err := NewEngine(rs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	res := e.Apply("ata", true)
	if res.Output != "aða" {
		t.Errorf("Expected aða, got %q", res.Output)
	}
	if len(res.Trace) != 2 {
		t.Fatalf("Expected 2 trace steps, got %v", res.Trace)
	}
	if res.Trace[0].RuleID != "lenition" || res.Trace[0].Word != "ada" {
		t.Errorf("Expected first step lenition/ada, got %+v", res.Trace[0])
	}
	if res.Trace[1].RuleID != "spirant" || res.Trace[1].Word != "aða" {
		t.Errorf("Expected second step spirant/aða, got %+v", res.Trace[1])
	}

	if res := e.Apply("bbb", true); len(res.Trace) != 0 || res.Output != "bbb" {
		t.Errorf("Expected untouched word to have no trace, got %+v", res)
	}
	if res := e.Apply("ata", false); res.Trace != nil {
		t.Errorf("Expected no trace when not requested, got %v", res.Trace)
	}
}

func TestTransformDirections(t *testing.T) {
	rs := &RuleSet{
		Transforms: []Transform{
			{ID: "ch", Seek: "ch", Replace: "č", Direction: DirectionMirrored},
			{ID: "caps", Seek: "q", Replace: "Q", Direction: DirectionOut},
			{ID: "kw", Seek: "kw", Replace: "q", Direction: DirectionIn},
		},
		Rules: []SoundChangeRule{
			{Seek: "č", Replace: "t", Context: "_a"},
		},
	}
	e, err := NewEngine(rs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	tests := []struct {
		input, expected string
	}{
		{"chat", "tat"},
		{"chut", "chut"},
		{"kwa", "Qa"},
	}
	for _, tt := range tests {
		if got := e.Apply(tt.input, true); got.Output != tt.expected {
			t.Errorf("Expected %q -> %q, got %q", tt.input, tt.expected, got.Output)
		}
	}
	if res := e.Apply("chut", true); len(res.Trace) != 0 {
		t.Errorf("Expected transforms not to be traced, got %v", res.Trace)
	}
}

func TestNormalization(t *testing.T) {
	rs := &RuleSet{Rules: []SoundChangeRule{{Seek: "\u00e4", Replace: "a"}}}
	e, err := NewEngine(rs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := e.Apply("ba\u0308", false).Output; got != "ba" {
		t.Errorf("Expected decomposed input to be normalised and rewritten, got %q", got)
	}

	if res := e.Apply("bo\u0308", false); res.Output != "b\u00f6" || res.Input != "bo\u0308" {
		t.Errorf("Expected untouched word to come out composed with input kept, got %+v", res)
	}

	rs.Options.Normalization = "none"
	e, err = NewEngine(rs)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := e.Apply("ba\u0308", false).Output; got != "ba\u0308" {
		t.Errorf("Expected input to stay decomposed, got %q", got)
	}
}
