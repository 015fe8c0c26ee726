package soundchange

import (
	"strings"
)

// TraceStep records the word as it stood after a rule changed it.
type TraceStep struct {
	RuleID string `json:"id,omitempty"`
	Rule   string `json:"rule"`
	Word   string `json:"word"`
}

// RuleTrace lists, in rule order, every rule application that changed a word.
type RuleTrace []TraceStep

// Result is the outcome of running one word through an engine.
type Result struct {
	Input  string    `json:"input"`
	Output string    `json:"output"`
	Trace  RuleTrace `json:"trace,omitempty"`
}

// scanState is the mutable state of one rule pass over one word. The scan
// moves strictly forward: every step either advances the cursor or shortens the
// part of the word still ahead of it.
type scanState struct {
	word      string
	cursor    int
	noEmptyAt int // a zero-width match here has already been dealt with
	buf       strings.Builder
}

func (st *scanState) reset(word string) {
	st.word = word
	st.cursor = 0
	st.noEmptyAt = -1
	st.buf.Reset()
}

// Rewrite applies the rule to word once, left to right.
func (cr *CompiledRule) Rewrite(word string) string {
	st := &scanState{}
	return cr.rewrite(st, word)
}

func (cr *CompiledRule) rewrite(st *scanState, word string) string {
	st.reset(word)
	for cr.step(st) {
	}
	return st.word
}

// step performs one transition of the scan and reports whether the scan
// should go on.
func (cr *CompiledRule) step(st *scanState) bool {
	loc := cr.seek.findFrom(st.word, st.cursor)
	if loc == nil {
		return false
	}
	start, end := loc[0], loc[1]
	if start == end && start == st.noEmptyAt {
		return st.skipGrapheme(start)
	}
	pre, post := st.word[:start], st.word[end:]
	if (cr.anti.constrained() && cr.anti.holds(pre, post)) || !cr.context.holds(pre, post) {
		if start == end {
			return st.skipGrapheme(start)
		}
		st.cursor = end
		st.noEmptyAt = end
		return true
	}
	repl := cr.replacement(st, loc)
	st.word = pre + repl + post
	st.cursor = start + len(repl)
	st.noEmptyAt = st.cursor
	return true
}

// skipGrapheme moves the cursor past the grapheme at pos. At the end of the
// word there is nothing left to scan.
func (st *scanState) skipGrapheme(pos int) bool {
	if pos >= len(st.word) {
		return false
	}
	st.cursor = pos + len(firstGrapheme(st.word[pos:]))
	st.noEmptyAt = -1
	return true
}

func (cr *CompiledRule) replacement(st *scanState, loc []int) string {
	st.buf.Reset()
	loc = cr.submatches(st.word, loc)
	if cr.form == ClassForm {
		expandTemplate(&st.buf, cr.template, st.word, loc)
		return st.buf.String()
	}
	indices := cr.correspondences(st.word[loc[0]:loc[1]])
	n := 0
	for _, tok := range cr.replace {
		switch tok.Kind {
		case GroupToken:
			i := 0
			if n < len(indices) {
				i = indices[n]
			}
			st.buf.WriteString(tok.Run[i%len(tok.Run)])
			n++
		case LiteralToken:
			st.buf.WriteString(tok.Text)
		default:
			expandTemplate(&st.buf, tok.Text, st.word, loc)
		}
	}
	return st.buf.String()
}

// submatches returns the capture spans of the match at loc. When the seek
// repeats a capture they are recovered by re-matching the matched text, so
// that each capture holds its last iteration.
func (cr *CompiledRule) submatches(word string, loc []int) []int {
	if cr.recapture == nil {
		return loc
	}
	sub := cr.recapture.submatch(word[loc[0]:loc[1]])
	if len(sub) != len(loc) {
		return loc
	}
	for i := range sub {
		if sub[i] >= 0 {
			sub[i] += loc[0]
		}
	}
	return sub
}

// correspondences finds, for every group reference of the seek side, the index
// of the run member it matched. A reference that matched no member, being
// negated or optional, counts as index 0.
func (cr *CompiledRule) correspondences(matched string) []int {
	indices := make([]int, len(cr.seekGroups))
	loc := cr.capture.submatch(matched)
	if loc == nil {
		// Fall back to the last member of each run found in the matched text.
		for g, tok := range cr.seekGroups {
			if i := tok.Run.lastIn(matched); i >= 0 && !tok.Negated {
				indices[g] = i
			}
		}
		return indices
	}
	// Under repetition several members of one reference may have matched;
	// the rightmost one wins.
	at := make([]int, len(cr.seekGroups))
	for i := range at {
		at[i] = -1
	}
	for sub, slot := range cr.captureSlots {
		if slot.ref < 0 || 2*sub+1 >= len(loc) || loc[2*sub] > loc[2*sub+1] || loc[2*sub] <= at[slot.ref] {
			continue
		}
		at[slot.ref] = loc[2*sub]
		indices[slot.ref] = slot.member
	}
	return indices
}
