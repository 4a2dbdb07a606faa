package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.abhg.dev/julesite/internal/config"
	"go.abhg.dev/julesite/internal/highlight"
	"go.abhg.dev/julesite/internal/iotest"
	"go.abhg.dev/julesite/internal/textmate"
)

var (
	_exampleGrammar = filepath.Join("example", "grammar", "jule.tmLanguage.yaml")
	_exampleTheme   = filepath.Join("example", "theme", "jule-dark.yaml")
)

func exampleSite() *config.Site {
	return &config.Site{
		Theme: _exampleTheme,
		Jobs:  1,
		Languages: []*config.Language{
			{
				ID:      "jule",
				Aliases: []string{"jl"},
				Grammar: _exampleGrammar,
			},
		},
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSetupHighlighter(t *testing.T) {
	t.Parallel()

	h, err := setupHighlighter(context.Background(), iotest.Logger(t), exampleSite(), iotest.Logger(t))
	require.NoError(t, err)

	assert.True(t, h.Has("jule"))
	assert.True(t, h.Has("jl"))
	assert.Contains(t, h.Languages(), "jule")

	got, err := h.Render("fn main() {}", "jule")
	require.NoError(t, err)
	assert.Contains(t, got, `<span style="color:#cba6f7">fn</span>`, "keyword color from the theme")

	// Types and keywords are styled separately by the theme.
	typed, err := h.Render("let x: int = 1", "jule")
	require.NoError(t, err)
	assert.Contains(t, typed, `<span style="color:#cba6f7">let</span>`)
	assert.Contains(t, typed, `<span style="color:#f9e2af;font-weight:bold">int</span>`)

	alias, err := h.Render("fn main() {}", "jl")
	require.NoError(t, err)
	assert.Equal(t, got, alias)
}

func TestSetupHighlighter_classes(t *testing.T) {
	t.Parallel()

	site := exampleSite()
	site.Classes = true
	h, err := setupHighlighter(context.Background(), iotest.Logger(t), site, iotest.Logger(t))
	require.NoError(t, err)

	got, err := h.Render("let x = 1", "jule")
	require.NoError(t, err)
	assert.Contains(t, got, `class="tm-chroma"`)
	assert.NotContains(t, got, "style=")
}

func TestSetupHighlighter_errors(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	themeWithoutColors := writeFile(t, "theme.yaml",
		"tokenColors:\n"+
			"  - scope: comment\n"+
			"    settings: {foreground: '#6c7086'}\n")

	tests := []struct {
		desc    string
		give    func(*config.Site)
		wantErr error
		wantMsg string
	}{
		{
			desc:    "missing grammar",
			give:    func(s *config.Site) { s.Languages[0].Grammar = missing },
			wantErr: textmate.ErrResourceNotFound,
			wantMsg: `language "jule"`,
		},
		{
			desc: "missing grammar and theme",
			give: func(s *config.Site) {
				s.Languages[0].Grammar = missing
				s.Theme = missing
			},
			wantErr: textmate.ErrResourceNotFound,
			wantMsg: `language "jule": grammar`,
		},
		{
			desc:    "missing theme",
			give:    func(s *config.Site) { s.Theme = missing },
			wantErr: textmate.ErrResourceNotFound,
			wantMsg: "theme",
		},
		{
			desc:    "malformed grammar",
			give:    func(s *config.Site) { s.Languages[0].Grammar = writeFile(t, "bad.yaml", "patterns: [") },
			wantErr: textmate.ErrMalformedDocument,
		},
		{
			desc:    "malformed theme",
			give:    func(s *config.Site) { s.Theme = writeFile(t, "bad-theme.yaml", "name: {") },
			wantErr: textmate.ErrMalformedDocument,
		},
		{
			desc:    "theme without editor colors",
			give:    func(s *config.Site) { s.Theme = themeWithoutColors },
			wantErr: highlight.ErrEngineInit,
		},
		{
			desc:    "scope mismatch",
			give:    func(s *config.Site) { s.Languages[0].ScopeName = "source.go" },
			wantErr: highlight.ErrScopeMismatch,
		},
		{
			desc: "duplicate alias",
			give: func(s *config.Site) {
				s.Languages = append(s.Languages, &config.Language{
					ID:      "jule2",
					Aliases: []string{"jl"},
					Grammar: _exampleGrammar,
				})
			},
			wantErr: highlight.ErrDuplicateLanguage,
			wantMsg: `"jl"`,
		},
		{
			desc: "invalid grammar",
			give: func(s *config.Site) {
				s.Languages[0].Grammar = writeFile(t, "invalid.yaml",
					"scopeName: source.jule\n"+
						"patterns:\n"+
						"  - name: keyword\n"+
						"    match: '(unclosed'\n")
			},
			wantErr: highlight.ErrInvalidGrammar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			site := exampleSite()
			tt.give(site)

			_, err := setupHighlighter(context.Background(), iotest.Logger(t), site, iotest.Logger(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}
}

func TestSetupHighlighter_canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := setupHighlighter(ctx, iotest.Logger(t), exampleSite(), iotest.Logger(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLanguage(t *testing.T) {
	t.Parallel()

	g := &textmate.Grammar{Name: "Jule", ScopeName: "source.jule"}

	t.Run("defaults from grammar", func(t *testing.T) {
		t.Parallel()

		got := newLanguage(&config.Language{ID: "Jule"}, g)
		assert.Equal(t, "jule", got.ID)
		assert.Equal(t, "Jule", got.Name)
		assert.Equal(t, "source.jule", got.ScopeName)
		assert.Empty(t, got.Aliases)
		assert.Equal(t, "Jule", got.Label())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		got := newLanguage(&config.Language{
			ID:          "jule",
			Name:        "jule-lang",
			ScopeName:   "source.jule.v2",
			DisplayName: "Jule 2",
			Aliases:     []string{"JL"},
		}, g)
		assert.Equal(t, "jule-lang", got.Name)
		assert.Equal(t, "source.jule.v2", got.ScopeName)
		assert.Equal(t, []string{"jl"}, got.Aliases)
		assert.Equal(t, "Jule 2", got.Label())
		assert.ErrorIs(t, got.Validate(), highlight.ErrScopeMismatch)
	})
}
