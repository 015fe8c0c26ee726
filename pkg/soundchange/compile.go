package soundchange

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadDirection = errors.New("unknown transform direction")

// SoundChangeRule rewrites Seek into Replace where Context holds and
// AntiContext does not. Both environments are written "Left_Right".
type SoundChangeRule struct {
	ID          string `yaml:"id,omitempty"`
	Seek        string `yaml:"seek"`
	Replace     string `yaml:"replace"`
	Context     string `yaml:"context,omitempty"`
	AntiContext string `yaml:"anticontext,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Label describes the rule for traces.
func (r SoundChangeRule) Label() string {
	if r.Description != "" {
		return r.Description
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %s", r.Seek, r.Replace)
	if r.Context != "" {
		b.WriteString(" / " + r.Context)
	}
	if r.AntiContext != "" {
		b.WriteString(" ! " + r.AntiContext)
	}
	return b.String()
}

// Direction selects when a transform runs.
type Direction string

const (
	DirectionIn       Direction = "in"       // before the rules
	DirectionOut      Direction = "out"      // after the rules
	DirectionBoth     Direction = "both"     // before and after, same way round
	DirectionMirrored Direction = "mirrored" // before, and reversed after
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionIn, DirectionOut, DirectionBoth, DirectionMirrored:
		return true
	}
	return false
}

// Transform is an unconditional rewrite applied around the rule list.
type Transform struct {
	ID        string    `yaml:"id,omitempty"`
	Seek      string    `yaml:"seek"`
	Replace   string    `yaml:"replace"`
	Direction Direction `yaml:"direction"`
}

// Pass is the point at which transforms run.
type Pass int

const (
	PrePass Pass = iota
	PostPass
)

// Form tells how a compiled rule builds its replacement.
type Form int

const (
	ClassForm          Form = iota // replacement is a template
	CorrespondenceForm             // replacement pairs group members by index
)

func (f Form) String() string {
	if f == CorrespondenceForm {
		return "correspondence"
	}
	return "class"
}

// environment is a compiled "Left_Right" context. A nil side is unconstrained.
type environment struct {
	left  *Pattern
	right *Pattern
}

func (e environment) constrained() bool {
	return e.left != nil || e.right != nil
}

// holds reports whether every constrained side is satisfied by the text
// before and after a match.
func (e environment) holds(pre, post string) bool {
	if e.left != nil && !e.left.MatchString(pre) {
		return false
	}
	if e.right != nil && !e.right.MatchString(post) {
		return false
	}
	return true
}

// captureSlot tells which member of which seek group reference a
// subexpression of the capture pattern stands for. ref is -1 for
// subexpressions written by the rule author.
type captureSlot struct {
	ref    int
	member int
}

// CompiledRule is an executable rule. It holds no per-word state and may be
// shared between goroutines.
type CompiledRule struct {
	id       string
	label    string
	form     Form
	seek      *Pattern
	recapture *Pattern // set when seek repeats a capture
	template  string   // class form

	// correspondence form
	capture      *Pattern
	captureSlots []captureSlot // by subexpression index
	seekGroups   []Token
	replace      Notation

	context environment
	anti    environment
}

// Form returns ClassForm or CorrespondenceForm.
func (cr *CompiledRule) Form() Form { return cr.form }

// Label is the description recorded in traces.
func (cr *CompiledRule) Label() string { return cr.label }

// ID is the id of the source rule or transform.
func (cr *CompiledRule) ID() string { return cr.id }

// SeekPattern is the pattern locating matches.
func (cr *CompiledRule) SeekPattern() *Pattern { return cr.seek }

// Compiler turns rules into CompiledRules against a fixed set of groups.
type Compiler struct {
	groups *Groups
	opts   Options
}

// NewCompiler creates a compiler. groups may be nil.
func NewCompiler(groups *Groups, opts Options) *Compiler {
	return &Compiler{groups: groups, opts: opts}
}

// CompileRule compiles a sound-change rule. It never fails: malformed parts
// degrade to "never matches" or "unconstrained".
func (c *Compiler) CompileRule(rule SoundChangeRule) *CompiledRule {
	cr := c.compileRewrite(rule.Seek, rule.Replace)
	cr.id = rule.ID
	cr.label = rule.Label()
	cr.context = c.compileEnvironment(rule.Context)
	cr.anti = c.compileEnvironment(rule.AntiContext)
	TC().P("rule", cr.label).Debugf("compiled %s form, seek=%s", cr.form, cr.seek)
	return cr
}

// CompileTransform compiles the part of a transform that runs in the given
// pass, or returns nil if the transform does not run then.
func (c *Compiler) CompileTransform(tr Transform, pass Pass) *CompiledRule {
	seek, replace := tr.Seek, tr.Replace
	switch tr.Direction {
	case DirectionIn:
		if pass != PrePass {
			return nil
		}
	case DirectionOut:
		if pass != PostPass {
			return nil
		}
	case DirectionBoth:
	case DirectionMirrored:
		if pass == PostPass {
			seek, replace = replace, seek
		}
	default:
		return nil
	}
	cr := c.compileRewrite(seek, replace)
	cr.id = tr.ID
	cr.label = fmt.Sprintf("%s → %s", seek, replace)
	return cr
}

func (c *Compiler) compileRewrite(seek, replace string) *CompiledRule {
	seekN := ResolveTokens(seek, c.groups)
	replN := ResolveTokens(replace, c.groups)
	seekExpr := c.opts.render(seekN, false)
	cr := &CompiledRule{seek: compilePattern(seekExpr)}
	if cr.seek.Valid() {
		cr.recapture = anchoredCapture(seekExpr)
	}
	if seekN.HasGroups() && replN.HasGroups() {
		cr.form = CorrespondenceForm
		cr.replace = joinText(replN)
		cr.seekGroups = seekN.GroupTokens()
		captureExpr := c.opts.render(seekN, true)
		if cr.capture = anchoredCapture(captureExpr); cr.capture == nil {
			cr.capture = compilePattern("^(?:" + captureExpr + ")$")
		}
		names := cr.capture.subexpNames()
		cr.captureSlots = make([]captureSlot, len(names))
		for i, name := range names {
			cr.captureSlots[i] = captureSlot{ref: -1}
			if ref, member, ok := parseCaptureName(name); ok && ref < len(cr.seekGroups) {
				cr.captureSlots[i] = captureSlot{ref: ref, member: member}
			}
		}
		return cr
	}
	cr.form = ClassForm
	cr.template = classTemplate(replN)
	return cr
}

// joinText merges adjacent raw and span tokens into one raw token, so that a
// back-reference split across them, like ${1}, expands as a whole.
func joinText(n Notation) Notation {
	var out Notation
	for _, tok := range n {
		if tok.Kind == RawToken || tok.Kind == SpanToken {
			if last := len(out) - 1; last >= 0 && out[last].Kind == RawToken {
				out[last].Text += tok.Text
				continue
			}
			tok.Kind = RawToken
		}
		out = append(out, tok)
	}
	return out
}

// classTemplate flattens a replacement notation into a template. A group
// reference without a counterpart stands for the first member of its run.
func classTemplate(n Notation) string {
	var b strings.Builder
	for _, tok := range n {
		switch tok.Kind {
		case RawToken, SpanToken:
			b.WriteString(tok.Text)
		case LiteralToken:
			b.WriteString(escapeTemplate(tok.Text))
		case GroupToken:
			b.WriteString(escapeTemplate(tok.Run[0]))
		}
	}
	return b.String()
}

// compileEnvironment compiles a "Left_Right" context. Anything without exactly
// one underscore is unconstrained. The left side must match a suffix of the
// text before a match, or all of it when it starts with '#'; the right side
// must match a prefix of the text after, or all of it when it ends with '#'.
func (c *Compiler) compileEnvironment(ctx string) environment {
	parts := strings.Split(ctx, "_")
	if len(parts) != 2 {
		return environment{}
	}
	left, right := parts[0], parts[1]
	var env environment
	if left != "" {
		anchor := ""
		if strings.HasPrefix(left, "#") {
			anchor, left = "^", left[1:]
		}
		env.left = compilePattern(anchor + "(?:" + c.opts.render(ResolveTokens(left, c.groups), false) + ")$")
	}
	if right != "" {
		anchor := ""
		if strings.HasSuffix(right, "#") {
			anchor, right = "$", right[:len(right)-1]
		}
		env.right = compilePattern("^(?:" + c.opts.render(ResolveTokens(right, c.groups), false) + ")" + anchor)
	}
	return env
}
