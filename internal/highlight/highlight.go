package highlight

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Highlighter turns source code into HTML.
//
// Build one with [New] and [Setup.Finish].
// A Highlighter is safe for concurrent use.
type Highlighter struct {
	style      *chroma.Style
	formatter  *chromahtml.Formatter
	useClasses bool

	// Custom languages use their own style,
	// with classes prefixed by _customClassPrefix.
	customStyle     *chroma.Style
	customFormatter *chromahtml.Formatter

	// Custom languages by id and alias.
	// Read-only after setup.
	lexers map[string]chroma.Lexer
	langs  []*Language
}

// WriteCSS writes the style classes for this highlighter to writer.
// If this highlighter is not using classes, WriteCSS is a no-op.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	if !h.useClasses {
		return nil
	}

	if err := h.formatter.WriteCSS(w, h.style); err != nil {
		return errtrace.Wrap(err)
	}
	if len(h.langs) == 0 {
		return nil
	}
	return errtrace.Wrap(h.customFormatter.WriteCSS(w, h.customStyle))
}

// Has reports whether the given language tag
// refers to a registered or built-in language.
func (h *Highlighter) Has(lang string) bool {
	_, _, ok := h.lexer(lang)
	return ok
}

// Languages returns the ids of registered custom languages, sorted.
func (h *Highlighter) Languages() []string {
	ids := make([]string, len(h.langs))
	for i, l := range h.langs {
		ids[i] = l.ID
	}
	sort.Strings(ids)
	return ids
}

// Render renders source code in the given language into HTML.
//
// Leading and trailing whitespace is removed from src first.
// The output is a single <pre> element
// with an element for each line of code.
//
// lang is a language id or alias.
// If no language matches it, the code is rendered as plain text.
func (h *Highlighter) Render(src, lang string) (_ string, err error) {
	src = strings.TrimSpace(src)

	lexer, custom, _ := h.lexer(lang)
	style, formatter := h.style, h.formatter
	if custom {
		style, formatter = h.customStyle, h.customFormatter
	}

	// Grammars that compiled successfully can still fail on some inputs.
	// Chroma reports those by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = errtrace.Wrap(fmt.Errorf("%w (language %q): %v", ErrRender, lang, r))
		}
	}()

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return "", errtrace.Wrap(fmt.Errorf("%w (language %q): %w", ErrRender, lang, err))
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, it); err != nil {
		return "", errtrace.Wrap(fmt.Errorf("%w (language %q): %w", ErrRender, lang, err))
	}
	return sb.String(), nil
}

// lexer finds the lexer for a language tag
// and reports whether it is for a custom language.
// It returns a plain text lexer and false if there isn't one.
func (h *Highlighter) lexer(lang string) (_ chroma.Lexer, custom, ok bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return lexers.Fallback, false, false
	}
	if l, ok := h.lexers[lang]; ok {
		return l, true, true
	}
	if l := lexers.Get(lang); l != nil {
		return chroma.Coalesce(l), false, true
	}
	return lexers.Fallback, false, false
}
