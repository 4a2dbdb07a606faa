package textmate

import (
	"fmt"
	"sort"
	"strconv"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

// Grammar is a TextMate-style tokenization grammar for one language.
type Grammar struct {
	// Name of the language, e.g. "Jule".
	Name string `yaml:"name"`

	// ScopeName is the root scope of the grammar, e.g. "source.jule".
	ScopeName string `yaml:"scopeName"`

	// FileTypes lists file extensions for the language, without dots.
	FileTypes []string `yaml:"fileTypes"`

	FirstLineMatch string `yaml:"firstLineMatch"`

	// Patterns are the top-level rules of the grammar.
	Patterns []*Rule `yaml:"patterns"`

	// Repository holds named rules that may be included
	// with "#name".
	Repository map[string]*Rule `yaml:"repository"`
}

// Rule is a single grammar rule.
//
// A rule takes one of the following shapes:
//
//   - match rule: Match, with optional Name and Captures
//   - block rule: Begin and End, with optional Patterns
//   - include: Include, referring to "#name", "$self", or "$base"
//   - container: only Patterns
type Rule struct {
	Name        string `yaml:"name"`
	ContentName string `yaml:"contentName"`

	Match string `yaml:"match"`
	Begin string `yaml:"begin"`
	End   string `yaml:"end"`
	While string `yaml:"while"`

	Captures      Captures `yaml:"captures"`
	BeginCaptures Captures `yaml:"beginCaptures"`
	EndCaptures   Captures `yaml:"endCaptures"`

	Patterns []*Rule `yaml:"patterns"`
	Include  string  `yaml:"include"`

	Comment  string `yaml:"comment"`
	Disabled Flag   `yaml:"disabled"`
}

// Flag is a boolean that TextMate grammars may spell as 0 or 1.
type Flag bool

var _ yaml.Unmarshaler = (*Flag)(nil)

// UnmarshalYAML decodes a flag from a boolean or an integer.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "1", "true", "True", "TRUE":
		*f = true
	case "0", "false", "False", "FALSE", "":
		*f = false
	default:
		return errtrace.Wrap(fmt.Errorf("line %d: expected a boolean, got %q", node.Line, node.Value))
	}
	return nil
}

// Capture assigns a scope name to a capture group.
type Capture struct {
	Name string `yaml:"name"`
}

// Captures maps capture group numbers to their scopes.
type Captures map[int]Capture

var _ yaml.Unmarshaler = (*Captures)(nil)

// UnmarshalYAML decodes a captures mapping.
// Keys are decimal group numbers,
// which TextMate grammars spell as strings.
func (cs *Captures) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]Capture
	if err := node.Decode(&raw); err != nil {
		return errtrace.Wrap(err)
	}

	out := make(Captures, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			return errtrace.Wrap(fmt.Errorf("line %d: capture key %q is not a group number", node.Line, k))
		}
		out[n] = v
	}
	*cs = out
	return nil
}

// Groups returns the group numbers in this mapping in ascending order.
func (cs Captures) Groups() []int {
	groups := make([]int, 0, len(cs))
	for n := range cs {
		groups = append(groups, n)
	}
	sort.Ints(groups)
	return groups
}
