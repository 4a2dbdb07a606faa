package highlight

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	"go.abhg.dev/julesite/internal/textmate"
)

const _defaultStyleName = "custom"

// _customClassPrefix prefixes the classes of code in custom languages.
// Their token types are styled separately from built-in languages,
// so the two need separate style sheets.
const _customClassPrefix = "tm-"

// themeStyle is a theme prepared for building Chroma styles.
type themeStyle struct {
	name   string
	base   string // style entry of chroma.Background
	fg, bg chroma.Colour
	rules  []themeRule
}

// newThemeStyle validates a theme and prepares it for use.
//
// The theme must provide a default background and foreground,
// either through the editor.background and editor.foreground colors
// or through a token color without scopes.
func newThemeStyle(theme *textmate.Theme, debugLog *log.Logger) (*themeStyle, error) {
	name := theme.Name
	if name == "" {
		name = _defaultStyleName
	}

	bg := theme.Colors["editor.background"]
	fg := theme.Colors["editor.foreground"]
	for _, tc := range theme.TokenColors {
		if tc == nil || len(tc.Scope) > 0 {
			continue
		}
		if c := tc.Settings.Background; c != "" {
			bg = c
		}
		if c := tc.Settings.Foreground; c != "" {
			fg = c
		}
	}
	if bg == "" {
		return nil, errtrace.Wrap(fmt.Errorf("theme %q: %w: no background color", name, ErrEngineInit))
	}
	if fg == "" {
		return nil, errtrace.Wrap(fmt.Errorf("theme %q: %w: no foreground color", name, ErrEngineInit))
	}

	base, err := styleEntry(textmate.TokenSettings{Foreground: fg, Background: bg})
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("theme %q: %w: %w", name, ErrEngineInit, err))
	}

	for i, tc := range theme.TokenColors {
		if tc == nil || len(tc.Scope) == 0 {
			continue
		}
		if _, err := styleEntry(tc.Settings); err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("theme %q: tokenColors[%d]: %w: %w", name, i, ErrEngineInit, err))
		}
	}

	// Both colors were validated by styleEntry.
	fgc, _ := parseColor(fg)
	bgc, _ := parseColor(bg)
	return &themeStyle{
		name:  name,
		base:  base,
		fg:    chroma.ParseColour(fgc),
		bg:    chroma.ParseColour(bgc),
		rules: themeRules(theme, debugLog),
	}, nil
}

// entry returns the style entry for a token with the given scopes,
// outermost first.
// It returns "" if the theme leaves such tokens in the default style.
//
// Entries do not inherit from other token types:
// everything the theme does not set comes from the default style.
func (t *themeStyle) entry(scopes []string) (string, error) {
	s := resolveSettings(t.rules, scopes)
	if sameColor(s.Foreground, t.fg) {
		s.Foreground = ""
	}
	if sameColor(s.Background, t.bg) {
		s.Background = ""
	}
	if s.FontStyle == nil {
		s.FontStyle = new(string)
	}
	if s.Foreground == "" && s.Background == "" && !hasFontStyle(*s.FontStyle) {
		return "", nil
	}

	entry, err := styleEntry(s)
	if err != nil {
		return "", errtrace.Wrap(fmt.Errorf("theme %q: %w: %w", t.name, ErrEngineInit, err))
	}
	return entry + " noinherit", nil
}

// builtinStyle builds the style for Chroma's built-in lexers.
//
// Each token type is styled like the first scope in _scopeTypes
// that maps to it.
func (t *themeStyle) builtinStyle() (*chroma.Style, error) {
	b := chroma.NewStyleBuilder(t.name)
	b.Add(chroma.Background, t.base)

	seen := make(map[chroma.TokenType]struct{})
	for _, st := range _scopeTypes {
		if _, ok := seen[st.tt]; ok {
			continue
		}
		seen[st.tt] = struct{}{}

		entry, err := t.entry([]string{st.scope})
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		if entry != "" {
			b.Add(st.tt, entry)
		}
	}

	style, err := b.Build()
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("theme %q: %w: %w", t.name, ErrEngineInit, err))
	}
	return style, nil
}

// customStyle styles the tokens of custom languages.
//
// Chroma styles tokens by their type.
// To follow the theme exactly,
// customStyle gives every distinct style that the theme assigns
// to the scopes of custom languages a token type of its own.
// The type Chroma uses for the scope is preferred
// so that class names stay meaningful.
//
// customStyle is not safe for concurrent use.
type customStyle struct {
	theme   *themeStyle
	byEntry map[string]chroma.TokenType
	entries map[chroma.TokenType]string
}

var _ tokenTyper = (*customStyle)(nil)

func newCustomStyle(theme *themeStyle) *customStyle {
	return &customStyle{
		theme:   theme,
		byEntry: make(map[string]chroma.TokenType),
		entries: make(map[chroma.TokenType]string),
	}
}

// _customTypes are the token types that customStyle may hand out,
// in the order it tries them.
var _customTypes = func() []chroma.TokenType {
	var types []chroma.TokenType
	for tt := range chroma.StandardTypes {
		if tt > 0 && tt != chroma.Text {
			types = append(types, tt)
		}
	}
	slices.Sort(types)
	return types
}()

func (s *customStyle) tokenType(scopes []string) (chroma.TokenType, error) {
	entry, err := s.theme.entry(scopes)
	if err != nil {
		return 0, errtrace.Wrap(err)
	}
	if entry == "" {
		return chroma.Text, nil
	}

	if tt, ok := stackType(scopes); ok {
		e, used := s.entries[tt]
		if !used {
			s.assign(tt, entry)
			return tt, nil
		}
		if e == entry {
			return tt, nil
		}
	}

	if tt, ok := s.byEntry[entry]; ok {
		return tt, nil
	}

	for _, tt := range _customTypes {
		if _, used := s.entries[tt]; !used {
			s.assign(tt, entry)
			return tt, nil
		}
	}
	return 0, errtrace.Wrap(fmt.Errorf("theme %q: %w: more than %d distinct token styles",
		s.theme.name, ErrEngineInit, len(_customTypes)))
}

func (s *customStyle) assign(tt chroma.TokenType, entry string) {
	s.entries[tt] = entry
	if _, ok := s.byEntry[entry]; !ok {
		s.byEntry[entry] = tt
	}
}

// build builds a Chroma style with the token types handed out so far.
func (s *customStyle) build() (*chroma.Style, error) {
	b := chroma.NewStyleBuilder(s.theme.name)
	b.Add(chroma.Background, s.theme.base)
	for tt, entry := range s.entries {
		b.Add(tt, entry)
	}

	style, err := b.Build()
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("theme %q: %w: %w", s.theme.name, ErrEngineInit, err))
	}
	return style, nil
}

// styleEntry converts token settings into a Chroma style entry.
func styleEntry(s textmate.TokenSettings) (string, error) {
	var parts []string
	if s.Foreground != "" {
		c, err := parseColor(s.Foreground)
		if err != nil {
			return "", errtrace.Wrap(err)
		}
		parts = append(parts, c)
	}
	if s.Background != "" {
		c, err := parseColor(s.Background)
		if err != nil {
			return "", errtrace.Wrap(err)
		}
		parts = append(parts, "bg:"+c)
	}

	if fs := s.FontStyle; fs != nil {
		var bold, italic, underline bool
		for _, f := range strings.Fields(*fs) {
			switch f {
			case "bold":
				bold = true
			case "italic":
				italic = true
			case "underline":
				underline = true
			case "strikethrough":
				// Not supported by Chroma.
			default:
				return "", errtrace.Errorf("unknown font style %q", f)
			}
		}
		parts = append(parts,
			fontFlag(bold, "bold"),
			fontFlag(italic, "italic"),
			fontFlag(underline, "underline"))
	}

	return strings.Join(parts, " "), nil
}

// hasFontStyle reports whether a font style turns anything on.
func hasFontStyle(fs string) bool {
	for _, f := range strings.Fields(fs) {
		switch f {
		case "bold", "italic", "underline":
			return true
		}
	}
	return false
}

func fontFlag(on bool, name string) string {
	if on {
		return name
	}
	return "no" + name
}

// sameColor reports whether a theme color is the given color.
func sameColor(s string, c chroma.Colour) bool {
	if s == "" {
		return false
	}
	norm, err := parseColor(s)
	return err == nil && chroma.ParseColour(norm) == c
}

// parseColor normalizes a theme color into "#rrggbb".
// Alpha channels are dropped.
func parseColor(s string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(c, "#") {
		return "", errtrace.Errorf("invalid color %q", s)
	}
	switch len(c) {
	case 5: // #rgba
		c = c[:4]
	case 9: // #rrggbbaa
		c = c[:7]
	}
	if len(c) != 4 && len(c) != 7 {
		return "", errtrace.Errorf("invalid color %q", s)
	}
	if !chroma.ParseColour(c).IsSet() {
		return "", errtrace.Errorf("invalid color %q", s)
	}
	return c, nil
}
