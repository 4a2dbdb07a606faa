package textmate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

var (
	// ErrResourceNotFound indicates that a document
	// does not exist or could not be read.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrMalformedDocument indicates that a document
	// could not be parsed.
	ErrMalformedDocument = errors.New("malformed document")
)

// LoadGrammar reads and parses the grammar document at path.
func LoadGrammar(path string) (*Grammar, error) {
	bs, err := readDocument(path)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("grammar: %w", err))
	}
	g, err := parseGrammar(path, bs)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("grammar %w", err))
	}
	return g, nil
}

// ParseGrammar parses a grammar document held in memory.
// name identifies the document in error messages.
func ParseGrammar(name string, src []byte) (*Grammar, error) {
	g, err := parseGrammar(name, src)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("grammar %w", err))
	}
	return g, nil
}

func parseGrammar(name string, src []byte) (*Grammar, error) {
	var g Grammar
	if err := decodeDocument(name, src, &g); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if g.ScopeName == "" {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w: no scopeName", name, ErrMalformedDocument))
	}
	return &g, nil
}

// LoadTheme reads and parses the theme document at path.
func LoadTheme(path string) (*Theme, error) {
	bs, err := readDocument(path)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("theme: %w", err))
	}
	t, err := parseTheme(path, bs)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("theme %w", err))
	}
	return t, nil
}

// ParseTheme parses a theme document held in memory.
// name identifies the document in error messages.
func ParseTheme(name string, src []byte) (*Theme, error) {
	t, err := parseTheme(name, src)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("theme %w", err))
	}
	return t, nil
}

func parseTheme(name string, src []byte) (*Theme, error) {
	var t Theme
	if err := decodeDocument(name, src, &t); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if len(t.Colors) == 0 && len(t.TokenColors) == 0 {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w: no colors or tokenColors", name, ErrMalformedDocument))
	}
	return &t, nil
}

func readDocument(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("%w: %w", ErrResourceNotFound, err))
	}
	return bs, nil
}

// decodeDocument decodes a YAML or JSON document into v.
// Unknown fields are ignored:
// grammars and themes commonly carry editor-specific settings.
func decodeDocument(name string, src []byte, v any) error {
	if err := yaml.NewDecoder(bytes.NewReader(src)).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("document is empty")
		}
		return errtrace.Wrap(fmt.Errorf("%v: %w: %w", name, ErrMalformedDocument, err))
	}
	return nil
}
