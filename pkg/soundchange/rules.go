package soundchange

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrBadNormalization = errors.New("unknown normalization form")

// RuleSet represents the structure of a YAML rules file
type RuleSet struct {
	Options    Options           `yaml:"options,omitempty"`
	Groups     []CharacterGroup  `yaml:"groups"`
	Transforms []Transform       `yaml:"transforms,omitempty"`
	Rules      []SoundChangeRule `yaml:"rules"`
}

// LoadRuleSetFile loads and parses a YAML rules file
func LoadRuleSetFile(filename string) (*RuleSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file '%s': %w", filename, err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("rules file '%s': %w", filename, err)
	}
	return rs, nil
}

// ParseRuleSet decodes and validates a YAML rule set.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks what the engine relies on: unique single-grapheme labels,
// non-empty runs, known transform directions and normalization forms. Rule
// notation is never rejected.
func (rs *RuleSet) Validate() error {
	if _, err := NewGroups(rs.Groups...); err != nil {
		return err
	}
	for i, tr := range rs.Transforms {
		if !tr.Direction.Valid() {
			return fmt.Errorf("%w: transform #%d has direction %q", ErrBadDirection, i+1, tr.Direction)
		}
	}
	if _, err := normalizer(rs.Options.Normalization); err != nil {
		return err
	}
	return nil
}

// Marshal renders the rule set as YAML.
func (rs *RuleSet) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rules to YAML: %w", err)
	}
	return data, nil
}

// DefaultRuleSet returns a small example rule set: intervocalic lenition with
// vowel backing, written to exercise every part of the notation.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Groups: []CharacterGroup{
			{Label: "C", Title: "consonants", Run: RunFromString("ptkbdgmnlrs")},
			{Label: "F", Title: "front vowels", Run: RunFromString("ie")},
			{Label: "B", Title: "back vowels", Run: RunFromString("uo")},
			{Label: "P", Title: "voiceless stops", Run: RunFromString("ptk")},
			{Label: "V", Title: "vowels", Run: RunFromString("aeiou")},
			{Label: "Z", Title: "voiced stops", Run: RunFromString("bdg")},
		},
		Transforms: []Transform{
			{ID: "digraph-ch", Seek: "ch", Replace: "č", Direction: DirectionMirrored},
		},
		Rules: []SoundChangeRule{
			{ID: "lenition", Seek: "%P", Replace: "%Z", Context: "%V_%V"},
			{ID: "backing", Seek: "%F", Replace: "%B", Context: "_%C#"},
			{ID: "final-devoicing", Seek: "%Z", Replace: "%P", Context: "_#"},
			{ID: "apocope", Seek: "%V", Replace: "", Context: "%C%V%C_#", AntiContext: "#%C%V%C_"},
		},
	}
}
