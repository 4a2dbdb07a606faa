package highlight

import (
	"fmt"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/julesite/internal/textmate"
)

// Language describes a custom language for registration.
type Language struct {
	// ID is the unique, lowercase identifier of the language.
	// Code blocks tagged with this identifier use this language.
	ID string

	// Name of the language.
	Name string

	// ScopeName is the root scope of the language.
	// It must match the scope name declared by Grammar.
	ScopeName string

	// DisplayName is an optional human-readable name.
	DisplayName string

	// Aliases are additional tags that select this language.
	Aliases []string

	// Grammar used to tokenize the language.
	Grammar *textmate.Grammar
}

// LanguageOption customizes a Language built with [NewLanguage].
type LanguageOption func(*Language)

// DisplayName sets the display name of a language.
func DisplayName(name string) LanguageOption {
	return func(l *Language) { l.DisplayName = name }
}

// Aliases adds aliases to a language.
func Aliases(aliases ...string) LanguageOption {
	return func(l *Language) {
		for _, a := range aliases {
			l.Aliases = append(l.Aliases, strings.ToLower(a))
		}
	}
}

// NewLanguage builds a language descriptor.
// It does not validate its arguments; see [Language.Validate].
func NewLanguage(id, name, scopeName string, grammar *textmate.Grammar, opts ...LanguageOption) *Language {
	l := Language{
		ID:        strings.ToLower(id),
		Name:      name,
		ScopeName: scopeName,
		Grammar:   grammar,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return &l
}

// LanguageFromGrammar builds a language descriptor
// that takes its name and scope name from the grammar.
func LanguageFromGrammar(id string, grammar *textmate.Grammar, opts ...LanguageOption) *Language {
	name := grammar.Name
	if name == "" {
		name = id
	}
	return NewLanguage(id, name, grammar.ScopeName, grammar, opts...)
}

// Label is the name of the language shown to users.
func (l *Language) Label() string {
	if l.DisplayName != "" {
		return l.DisplayName
	}
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// Tags returns the id and aliases of this language.
func (l *Language) Tags() []string {
	return append([]string{l.ID}, l.Aliases...)
}

// Validate reports whether this language can be registered.
func (l *Language) Validate() error {
	if l.ID == "" {
		return errtrace.New("language has no id")
	}
	if l.ID != strings.ToLower(l.ID) {
		return errtrace.Errorf("language %q: id must be lowercase", l.ID)
	}
	if l.Grammar == nil {
		return errtrace.Errorf("language %q: no grammar", l.ID)
	}
	if l.ScopeName != l.Grammar.ScopeName {
		return errtrace.Wrap(fmt.Errorf("language %q: %w: descriptor has %q, grammar has %q",
			l.ID, ErrScopeMismatch, l.ScopeName, l.Grammar.ScopeName))
	}
	return nil
}
