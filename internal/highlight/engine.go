package highlight

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"go.abhg.dev/julesite/internal/textmate"
)

// Options configures a highlighter.
type Options struct {
	// UseClasses specifies whether the highlighter
	// uses inline 'style' attributes for highlighting,
	// or classes, assuming use of the style sheet from WriteCSS.
	UseClasses bool

	// Log receives debug messages.
	// Defaults to discarding them.
	Log *log.Logger
}

// Setup is a highlighter that is still being set up.
// Languages may only be registered during setup.
//
// Setup is not safe for concurrent use.
type Setup struct {
	log        *log.Logger
	style      *chroma.Style
	formatter  *chromahtml.Formatter
	useClasses bool

	// Styles for custom languages
	// grow as languages are registered.
	custom          *customStyle
	customStyle     *chroma.Style
	customFormatter *chromahtml.Formatter

	langs    []*Language
	lexers   map[string]chroma.Lexer // id or alias => lexer
	finished *Highlighter
}

// New starts setting up a highlighter with the given theme.
func New(ctx context.Context, theme *textmate.Theme, opts Options) (*Setup, error) {
	if err := ctx.Err(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	if theme == nil {
		return nil, errtrace.Wrap(fmt.Errorf("%w: no theme", ErrEngineInit))
	}

	logger := opts.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ts, err := newThemeStyle(theme, logger)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	style, err := ts.builtinStyle()
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	custom := newCustomStyle(ts)
	customStyle, err := custom.build()
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	return &Setup{
		log:        logger,
		style:      style,
		formatter:  chromahtml.New(chromahtml.WithClasses(opts.UseClasses)),
		useClasses: opts.UseClasses,

		custom:      custom,
		customStyle: customStyle,
		customFormatter: chromahtml.New(
			chromahtml.WithClasses(opts.UseClasses),
			chromahtml.ClassPrefix(_customClassPrefix),
		),

		lexers: make(map[string]chroma.Lexer),
	}, nil
}

// Register adds a custom language to the highlighter.
//
// The language's grammar is compiled immediately,
// so an invalid grammar fails here rather than while rendering.
// Register fails if the id or one of the aliases
// is already used by another registered language.
// Custom languages take precedence over built-in ones with the same name.
func (s *Setup) Register(ctx context.Context, lang *Language) error {
	if lang == nil {
		return errtrace.New("register: no language")
	}
	if s.finished != nil {
		return errtrace.Wrap(fmt.Errorf("register %q: %w", lang.ID, ErrFrozen))
	}
	if err := ctx.Err(); err != nil {
		return errtrace.Wrap(err)
	}
	if err := lang.Validate(); err != nil {
		return errtrace.Wrap(err)
	}

	tags := lang.Tags()
	for i, tag := range tags {
		tag = strings.ToLower(tag)
		if _, ok := s.lexers[tag]; ok {
			return errtrace.Wrap(fmt.Errorf("language %q: %w: %q", lang.ID, ErrDuplicateLanguage, tag))
		}
		for _, prev := range tags[:i] {
			if strings.EqualFold(prev, tag) {
				return errtrace.Wrap(fmt.Errorf("language %q: %w: %q listed twice", lang.ID, ErrDuplicateLanguage, tag))
			}
		}
		tags[i] = tag
	}

	lexer, err := compileLexer(lang, s.custom, s.log)
	if err != nil {
		return errtrace.Wrap(err)
	}
	customStyle, err := s.custom.build()
	if err != nil {
		return errtrace.Wrap(err)
	}
	s.customStyle = customStyle

	for _, tag := range tags {
		s.lexers[tag] = lexer
	}
	s.langs = append(s.langs, lang)
	s.log.Printf("registered language %q (%v) for %q", lang.ID, lang.ScopeName, tags)
	return nil
}

// Finish ends setup and returns the highlighter.
// No more languages may be registered after this.
//
// Calling Finish again returns the same highlighter.
func (s *Setup) Finish() *Highlighter {
	if s.finished == nil {
		s.finished = &Highlighter{
			style:           s.style,
			formatter:       s.formatter,
			customStyle:     s.customStyle,
			customFormatter: s.customFormatter,
			useClasses:      s.useClasses,
			lexers:          s.lexers,
			langs:           s.langs,
		}
	}
	return s.finished
}
