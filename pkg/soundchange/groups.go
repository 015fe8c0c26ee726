package soundchange

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/rivo/uniseg"
	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateLabel = errors.New("duplicate group label")
	ErrBadLabel       = errors.New("group label must be a single grapheme")
	ErrEmptyRun       = errors.New("group run is empty")
)

// Run is the ordered list of graphemes belonging to a character group.
type Run []string

// CharacterGroup is a named class of interchangeable graphemes.
type CharacterGroup struct {
	Label string `yaml:"label"`
	Title string `yaml:"title,omitempty"`
	Run   Run    `yaml:"run"`
}

// SplitGraphemes splits s into user-perceived characters.
func SplitGraphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// firstGrapheme returns the leading grapheme of s, or "" if s is empty.
func firstGrapheme(s string) string {
	if s == "" {
		return ""
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	if cluster == "" {
		_, size := utf8.DecodeRuneInString(s)
		return s[:size]
	}
	return cluster
}

// RunFromString splits s into graphemes, dropping whitespace so that both
// "aeiou" and "a e i o u" give the same run.
func RunFromString(s string) Run {
	var run Run
	for _, g := range SplitGraphemes(s) {
		if strings.TrimFunc(g, unicode.IsSpace) == "" {
			continue
		}
		run = append(run, g)
	}
	return run
}

// Index returns the position of grapheme g within the run, or -1.
func (r Run) Index(g string) int {
	for i, x := range r {
		if x == g {
			return i
		}
	}
	return -1
}

// lastIn returns the index of the member of r ending nearest to the end of
// text, preferring the longest member at each position, or -1.
func (r Run) lastIn(text string) int {
	for end := len(text); end > 0; {
		best := -1
		for i, m := range r {
			if m != "" && strings.HasSuffix(text[:end], m) && (best < 0 || len(m) > len(r[best])) {
				best = i
			}
		}
		if best >= 0 {
			return best
		}
		_, size := utf8.DecodeLastRuneInString(text[:end])
		end -= size
	}
	return -1
}

// multiRune reports whether any grapheme of the run spans more than one code point.
func (r Run) multiRune() bool {
	for _, g := range r {
		if utf8.RuneCountInString(g) > 1 {
			return true
		}
	}
	return false
}

// UnmarshalYAML accepts either a scalar, which is split into graphemes, or a
// sequence holding one grapheme per item.
func (r *Run) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = RunFromString(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*r = Run(items)
		return nil
	}
	return fmt.Errorf("line %d: run must be a string or a list of graphemes", node.Line)
}

// MarshalYAML writes a run as a plain string unless that would lose grapheme
// boundaries.
func (r Run) MarshalYAML() (interface{}, error) {
	joined := strings.Join(r, "")
	if len(RunFromString(joined)) == len(r) {
		return joined, nil
	}
	return []string(r), nil
}

// Groups is the label -> group registry of a rule set. It is immutable once
// handed to a Compiler.
type Groups struct {
	tree *treemap.Map
}

// NewGroups builds a registry, rejecting duplicate labels and empty runs.
func NewGroups(groups ...CharacterGroup) (*Groups, error) {
	g := &Groups{tree: treemap.NewWithStringComparator()}
	for _, cg := range groups {
		if err := g.add(cg); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MustGroups is like NewGroups but panics on error.
func MustGroups(groups ...CharacterGroup) *Groups {
	g, err := NewGroups(groups...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Groups) add(cg CharacterGroup) error {
	if len(SplitGraphemes(cg.Label)) != 1 {
		return fmt.Errorf("%w: %q", ErrBadLabel, cg.Label)
	}
	if len(cg.Run) == 0 {
		return fmt.Errorf("%w: group '%s'", ErrEmptyRun, cg.Label)
	}
	if _, found := g.tree.Get(cg.Label); found {
		return fmt.Errorf("%w: '%s'", ErrDuplicateLabel, cg.Label)
	}
	g.tree.Put(cg.Label, cg)
	return nil
}

// Lookup finds the group with the given label. A nil registry holds no groups.
func (g *Groups) Lookup(label string) (CharacterGroup, bool) {
	if g == nil || g.tree == nil {
		return CharacterGroup{}, false
	}
	v, found := g.tree.Get(label)
	if !found {
		return CharacterGroup{}, false
	}
	return v.(CharacterGroup), true
}

// Labels returns all labels in sorted order.
func (g *Groups) Labels() []string {
	if g == nil || g.tree == nil {
		return nil
	}
	keys := g.tree.Keys()
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = k.(string)
	}
	return labels
}

// Len is the number of groups.
func (g *Groups) Len() int {
	if g == nil || g.tree == nil {
		return 0
	}
	return g.tree.Size()
}
