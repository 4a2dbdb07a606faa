package main

import (
	"context"
	"fmt"
	"log"

	"braces.dev/errtrace"
	"go.abhg.dev/julesite/internal/config"
	"go.abhg.dev/julesite/internal/highlight"
	"go.abhg.dev/julesite/internal/textmate"
)

// setupHighlighter loads the grammars and theme of the site
// and builds a highlighter from them.
//
// Grammars are loaded before the theme,
// and all documents are loaded before the highlighter is set up.
// The first failure stops the setup.
func setupHighlighter(
	ctx context.Context,
	logger *log.Logger,
	site *config.Site,
	debugLog *log.Logger,
) (*highlight.Highlighter, error) {
	grammars := make([]*textmate.Grammar, len(site.Languages))
	for i, l := range site.Languages {
		g, err := textmate.LoadGrammar(l.Grammar)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("language %q: %w", l.ID, err))
		}
		grammars[i] = g
	}

	theme, err := textmate.LoadTheme(site.Theme)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	langs := make([]*highlight.Language, len(site.Languages))
	for i, l := range site.Languages {
		langs[i] = newLanguage(l, grammars[i])
	}

	setup, err := highlight.New(ctx, theme, highlight.Options{
		UseClasses: site.Classes,
		Log:        debugLog,
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	for _, lang := range langs {
		if err := setup.Register(ctx, lang); err != nil {
			return nil, errtrace.Wrap(err)
		}
		logger.Printf("Registered language %v (%v)", lang.Label(), lang.ID)
	}

	return setup.Finish(), nil
}

// newLanguage builds a language descriptor from its configuration.
// The name and scope name default to those declared by the grammar.
func newLanguage(l *config.Language, g *textmate.Grammar) *highlight.Language {
	opts := []highlight.LanguageOption{highlight.Aliases(l.Aliases...)}
	if l.DisplayName != "" {
		opts = append(opts, highlight.DisplayName(l.DisplayName))
	}

	lang := highlight.LanguageFromGrammar(l.ID, g, opts...)
	if l.Name != "" {
		lang.Name = l.Name
	}
	if l.ScopeName != "" {
		lang.ScopeName = l.ScopeName
	}
	return lang
}
