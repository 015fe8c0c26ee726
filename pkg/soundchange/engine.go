package soundchange

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Engine runs words through pre-transforms, sound-change rules and
// post-transforms. An Engine is read-only after construction and safe for
// concurrent use.
type Engine struct {
	pre       []*CompiledRule
	rules     []*CompiledRule
	post      []*CompiledRule
	normalize func(string) string
}

// NewEngine compiles a rule set.
func NewEngine(rs *RuleSet) (*Engine, error) {
	normalize, err := normalizer(rs.Options.Normalization)
	if err != nil {
		return nil, err
	}
	groups := make([]CharacterGroup, len(rs.Groups))
	for i, g := range rs.Groups {
		run := make(Run, len(g.Run))
		for j, m := range g.Run {
			run[j] = normalize(m)
		}
		groups[i] = CharacterGroup{Label: normalize(g.Label), Title: g.Title, Run: run}
	}
	registry, err := NewGroups(groups...)
	if err != nil {
		return nil, err
	}
	c := NewCompiler(registry, rs.Options)
	e := &Engine{normalize: normalize}
	for _, tr := range rs.Transforms {
		if !tr.Direction.Valid() {
			return nil, fmt.Errorf("%w: transform '%s' has direction %q", ErrBadDirection, tr.ID, tr.Direction)
		}
		tr.Seek, tr.Replace = normalize(tr.Seek), normalize(tr.Replace)
		if cr := c.CompileTransform(tr, PrePass); cr != nil {
			e.pre = append(e.pre, cr)
		}
		if cr := c.CompileTransform(tr, PostPass); cr != nil {
			e.post = append(e.post, cr)
		}
	}
	for _, rule := range rs.Rules {
		rule.Seek, rule.Replace = normalize(rule.Seek), normalize(rule.Replace)
		rule.Context, rule.AntiContext = normalize(rule.Context), normalize(rule.AntiContext)
		e.rules = append(e.rules, c.CompileRule(rule))
	}
	TC().Debugf("engine: %d group(s), %d pre, %d rule(s), %d post",
		registry.Len(), len(e.pre), len(e.rules), len(e.post))
	return e, nil
}

// NewEngineFromCompiled assembles an engine from already compiled parts.
// Words are not normalised.
func NewEngineFromCompiled(pre, rules, post []*CompiledRule) *Engine {
	return &Engine{pre: pre, rules: rules, post: post, normalize: identity}
}

// Rules returns the compiled sound-change rules in order.
func (e *Engine) Rules() []*CompiledRule { return e.rules }

// Apply runs one word through the engine. The output is in the engine's
// normal form. The trace is only collected when trace is set.
func (e *Engine) Apply(word string, trace bool) Result {
	st := borrowScanState()
	defer releaseScanState(st)
	return e.apply(st, word, trace)
}

func (e *Engine) apply(st *scanState, word string, trace bool) Result {
	res := Result{Input: word}
	w := e.normalize(word)
	for _, cr := range e.pre {
		w = cr.rewrite(st, w)
	}
	for _, cr := range e.rules {
		before := w
		w = cr.rewrite(st, w)
		if trace && w != before {
			res.Trace = append(res.Trace, TraceStep{RuleID: cr.id, Rule: cr.label, Word: w})
		}
	}
	for _, cr := range e.post {
		w = cr.rewrite(st, w)
	}
	res.Output = w
	return res
}

func identity(s string) string { return s }

func normalizer(form string) (func(string) string, error) {
	switch strings.ToLower(strings.TrimSpace(form)) {
	case "", "nfc":
		return norm.NFC.String, nil
	case "nfd":
		return norm.NFD.String, nil
	case "none":
		return identity, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadNormalization, form)
}
