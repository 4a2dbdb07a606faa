package highlight

import (
	"context"
	"testing"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/julesite/internal/iotest"
	"go.abhg.dev/julesite/internal/textmate"
)

const _juleGrammar = `
name: Jule
scopeName: source.jule
fileTypes: [jule]
patterns:
  - include: "#comments"
  - include: "#strings"
  - include: "#keywords"
  - include: "#functions"
  - name: constant.numeric.integer.jule
    match: \b[0-9]+\b
  - name: keyword.operator.jule
    match: "[=+*/-]"
repository:
  comments:
    patterns:
      - name: comment.block.jule
        begin: /\*
        end: \*/
      - name: comment.line.double-slash.jule
        match: //.*$
  strings:
    name: string.quoted.double.jule
    begin: '"'
    end: '"'
    beginCaptures:
      "0": {name: punctuation.definition.string.begin.jule}
    patterns:
      - name: constant.character.escape.jule
        match: \\.
  keywords:
    patterns:
      - name: storage.type.jule
        match: \b(?:fn|let)\b
      - name: keyword.control.jule
        match: \b(?:if|else|ret)\b
  functions:
    match: \b([A-Za-z_]\w*)\s*(?=\()
    captures:
      "1": {name: entity.name.function.jule}
`

const _darkTheme = `
name: test-dark
colors:
  editor.background: "#1e1e2e"
  editor.foreground: "#cdd6f4"
tokenColors:
  - scope: comment
    settings:
      foreground: "#6c7086"
      fontStyle: italic
  - scope: keyword.control, storage.type
    settings:
      foreground: "#cba6f7"
  - scope: string
    settings:
      foreground: "#a6e3a1"
  - scope: entity.name.function
    settings:
      foreground: "#89b4fa"
      fontStyle: bold
`

func parseGrammar(t testing.TB, src string) *textmate.Grammar {
	t.Helper()

	g, err := textmate.ParseGrammar(t.Name(), []byte(src))
	require.NoError(t, err)
	return g
}

func parseTheme(t testing.TB, src string) *textmate.Theme {
	t.Helper()

	theme, err := textmate.ParseTheme(t.Name(), []byte(src))
	require.NoError(t, err)
	return theme
}

func juleLanguage(t testing.TB, opts ...LanguageOption) *Language {
	return LanguageFromGrammar("jule", parseGrammar(t, _juleGrammar), opts...)
}

// newHighlighter builds a highlighter with the test theme
// and the given languages.
func newHighlighter(t testing.TB, opts Options, langs ...*Language) *Highlighter {
	t.Helper()

	if opts.Log == nil {
		opts.Log = iotest.Logger(t)
	}

	ctx := context.Background()
	setup, err := New(ctx, parseTheme(t, _darkTheme), opts)
	require.NoError(t, err)
	for _, lang := range langs {
		require.NoError(t, setup.Register(ctx, lang))
	}
	return setup.Finish()
}

// scopeTypes types tokens by _scopeTypes alone.
type scopeTypes struct{}

func (scopeTypes) tokenType(scopes []string) (chroma.TokenType, error) {
	if tt, ok := stackType(scopes); ok {
		return tt, nil
	}
	return chroma.Text, nil
}

// tokenize runs a lexer over src and returns all its tokens.
func tokenize(t testing.TB, lexer chroma.Lexer, src string) []chroma.Token {
	t.Helper()

	it, err := lexer.Tokenise(nil, src)
	require.NoError(t, err)
	return it.Tokens()
}
