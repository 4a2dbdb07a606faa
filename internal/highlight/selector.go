package highlight

import (
	"log"
	"strings"

	"go.abhg.dev/julesite/internal/textmate"
)

// themeRule is a single scope selector from a theme's token colors.
type themeRule struct {
	// Scopes of a descendant selector, outermost first.
	// "source.jule string" is [source.jule, string].
	path []string

	settings textmate.TokenSettings
}

// themeRules flattens the scoped token colors of a theme into rules,
// one per selector, in the order they appear in the theme.
//
// Exclusion selectors ("string - string.regexp")
// are not supported and are skipped.
func themeRules(theme *textmate.Theme, debugLog *log.Logger) []themeRule {
	var rules []themeRule
	for _, tc := range theme.TokenColors {
		if tc == nil {
			continue
		}
		for _, sel := range tc.Scope {
			path := strings.Fields(sel)
			if len(path) == 0 {
				continue
			}
			if containsOperator(path) {
				debugLog.Printf("theme %q: unsupported selector %q", theme.Name, sel)
				continue
			}
			rules = append(rules, themeRule{path: path, settings: tc.Settings})
		}
	}
	return rules
}

func containsOperator(path []string) bool {
	for _, p := range path {
		if p == "-" || p == "|" || strings.HasPrefix(p, "(") || strings.HasSuffix(p, ")") {
			return true
		}
	}
	return false
}

// selectorScore is how well a selector matches a scope stack.
// Matches deeper in the stack win,
// and then matches that name more of the scope.
type selectorScore struct {
	depth int // 1-based position of the matched scope
	parts int // number of dot-separated parts in the selector
}

func (s selectorScore) less(o selectorScore) bool {
	if s.depth != o.depth {
		return s.depth < o.depth
	}
	return s.parts < o.parts
}

// match reports whether the rule applies to a token
// with the given scopes, outermost first.
func (r *themeRule) match(stack []string) (selectorScore, bool) {
	last := r.path[len(r.path)-1]
	ancestors := r.path[:len(r.path)-1]
	for i := len(stack) - 1; i >= 0; i-- {
		if !scopeMatches(last, stack[i]) {
			continue
		}
		if matchAncestors(ancestors, stack[:i]) {
			return selectorScore{
				depth: i + 1,
				parts: strings.Count(last, ".") + 1,
			}, true
		}
	}
	return selectorScore{}, false
}

// matchAncestors reports whether the selector parts
// match scopes of the stack in order, not necessarily adjacent.
func matchAncestors(path, stack []string) bool {
	i := len(stack) - 1
	for j := len(path) - 1; j >= 0; j-- {
		for i >= 0 && !scopeMatches(path[j], stack[i]) {
			i--
		}
		if i < 0 {
			return false
		}
		i--
	}
	return true
}

// scopeMatches reports whether a selector names the scope
// or one of its dot-separated prefixes.
// "string.quoted" matches "string.quoted.double.jule"
// but not "string.quotedx".
func scopeMatches(selector, scope string) bool {
	if !strings.HasPrefix(scope, selector) {
		return false
	}
	return len(scope) == len(selector) || scope[len(selector)] == '.'
}

// resolveSettings picks the settings of a token with the given scopes.
//
// Each attribute comes from the best matching rule that sets it,
// so a theme may color a scope with one rule
// and make it bold with another.
// Among equally good matches, the later rule wins.
func resolveSettings(rules []themeRule, stack []string) textmate.TokenSettings {
	var (
		out                   textmate.TokenSettings
		fg, bg, font          selectorScore
		hasFG, hasBG, hasFont bool
	)
	for i := range rules {
		r := &rules[i]
		score, ok := r.match(stack)
		if !ok {
			continue
		}

		s := r.settings
		if s.Foreground != "" && (!hasFG || !score.less(fg)) {
			out.Foreground, fg, hasFG = s.Foreground, score, true
		}
		if s.Background != "" && (!hasBG || !score.less(bg)) {
			out.Background, bg, hasBG = s.Background, score, true
		}
		if s.FontStyle != nil && (!hasFont || !score.less(font)) {
			out.FontStyle, font, hasFont = s.FontStyle, score, true
		}
	}
	return out
}
