package textmate

import (
	"fmt"
	"strings"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

// Theme is a VS Code-style color theme.
type Theme struct {
	Name string `yaml:"name"`

	// Type is "light" or "dark".
	Type string `yaml:"type"`

	// Colors holds workbench colors.
	// Only "editor.background" and "editor.foreground" are used.
	Colors map[string]string `yaml:"colors"`

	TokenColors []*TokenColor `yaml:"tokenColors"`
}

// TokenColor styles the tokens matching its scopes.
// A TokenColor without scopes sets the default style.
type TokenColor struct {
	Name     string        `yaml:"name"`
	Scope    Scopes        `yaml:"scope"`
	Settings TokenSettings `yaml:"settings"`
}

// TokenSettings are the display attributes of a token.
type TokenSettings struct {
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`

	// FontStyle is a space-separated list of
	// "bold", "italic", "underline", and "strikethrough".
	// An empty, non-nil FontStyle resets inherited font styles.
	FontStyle *string `yaml:"fontStyle"`
}

// Scopes is a list of scope selectors.
//
// In documents it is either a list of strings,
// or a single comma-separated string.
type Scopes []string

var _ yaml.Unmarshaler = (*Scopes)(nil)

// UnmarshalYAML decodes a scope selector list.
func (s *Scopes) UnmarshalYAML(node *yaml.Node) error {
	var items []string
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return errtrace.Wrap(err)
		}
		items = strings.Split(v, ",")
	case yaml.SequenceNode:
		if err := node.Decode(&items); err != nil {
			return errtrace.Wrap(err)
		}
	default:
		return errtrace.Wrap(fmt.Errorf("line %d: scope must be a string or a list of strings", node.Line))
	}

	out := make(Scopes, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*s = out
	return nil
}
