/*
Package soundchange implements an ordered, context-sensitive rewrite engine for
constructed-language sound changes.

Rules are written in a small notation that references character groups
(phoneme classes) by label:

	%V     any member of group V
	!%V    anything that is not a member of group V
	%%     a literal percent sign
	\c     the literal character c
	[...]  {...}  copied through untouched

A rule rewrites Seek into Replace wherever the word satisfies its context
("Left_Right") and does not satisfy its anti-context. When both sides reference
groups, replacement is position-paired: the n-th grapheme of the matched group
becomes the n-th grapheme (modulo length) of the replacement group.

Words, group runs and rule notation are brought to one Unicode normal form
before rules run, NFC unless the rule set says otherwise. Result.Output is in
that form even for a word no rule changed; Result.Input keeps the word as
given. Set the normalization option to "none" to pass words through untouched.

Typical usage:

	rs, err := soundchange.LoadRuleSetFile("latin.yaml")
	...
	engine, err := soundchange.NewEngine(rs)
	...
	res := engine.Apply("lupus", true)
	fmt.Println(res.Output, res.Trace)
*/
package soundchange

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

func init() {
	if gtrace.CoreTracer == nil {
		gtrace.CoreTracer = gologadapter.New()
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	}
}

// TC traces to the core-tracer.
func TC() tracing.Trace {
	return gtrace.CoreTracer
}
