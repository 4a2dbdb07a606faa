package highlight

import (
	"fmt"
	"log"
	"strings"
	"time"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/dlclark/regexp2"
	"go.abhg.dev/julesite/internal/textmate"
)

// _anyChar matches a single character, including newlines.
const _anyChar = `[\s\S]`

// _matchTimeout bounds a single pattern match.
// Chroma uses the same limit for its rules.
const _matchTimeout = 250 * time.Millisecond

// tokenTyper picks the token type for tokens with the given scopes,
// outermost first.
type tokenTyper interface {
	tokenType(scopes []string) (chroma.TokenType, error)
}

// compileLexer compiles a language's grammar into a Chroma lexer.
// Tokens are typed by types.
//
// The returned lexer has been fully compiled:
// all its patterns are known to be valid.
func compileLexer(lang *Language, types tokenTyper, debugLog *log.Logger) (chroma.Lexer, error) {
	c := grammarCompiler{
		grammar: lang.Grammar,
		types:   types,
		log:     debugLog,
		rules:   make(chroma.Rules),
		blocks:  make(map[*textmate.Rule]string),
	}
	rules, err := c.compile()
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("language %q: %w: %w", lang.ID, ErrInvalidGrammar, err))
	}

	filenames := make([]string, 0, len(lang.Grammar.FileTypes))
	for _, ft := range lang.Grammar.FileTypes {
		filenames = append(filenames, "*."+strings.TrimPrefix(ft, "."))
	}

	lexer, err := chroma.NewLexer(&chroma.Config{
		Name:      lang.Label(),
		Aliases:   lang.Tags(),
		Filenames: filenames,
		EnsureNL:  true,
	}, func() chroma.Rules { return rules })
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("language %q: %w: %w", lang.ID, ErrInvalidGrammar, err))
	}

	// Chroma compiles rules lazily on first use.
	// Tokenizing an empty string forces that now
	// so that bad grammars fail at registration.
	if _, err := lexer.Tokenise(nil, ""); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("language %q: %w: %w", lang.ID, ErrInvalidGrammar, err))
	}

	return chroma.Coalesce(lexer), nil
}

// grammarCompiler translates a TextMate grammar into Chroma rules.
//
// Match rules become Chroma rules in the current state.
// Block rules (begin/end) push a new state
// which ends with the end pattern.
// Includes are expanded in place.
//
// Each token is typed by the scopes enclosing it:
// the root scope of the grammar, the names of enclosing blocks,
// and the names of the rule and capture group that produced it.
// A block compiles to a single state,
// so its contents are typed by the blocks enclosing its first use.
type grammarCompiler struct {
	grammar *textmate.Grammar
	types   tokenTyper
	log     *log.Logger

	rules chroma.Rules

	// State names for block rules that were already compiled.
	// Grammars commonly nest blocks recursively
	// so this also terminates recursion.
	blocks map[*textmate.Rule]string
}

func (c *grammarCompiler) compile() (chroma.Rules, error) {
	scopes := withScope(nil, c.grammar.ScopeName)
	root, err := c.expand("patterns", c.grammar.Patterns, nil, scopes)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	text, err := c.types.tokenType(scopes)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	c.rules["root"] = append(root, chroma.Rule{Pattern: _anyChar, Type: text})
	return c.rules, nil
}

// expand compiles a list of patterns into rules for a single state.
//
// including holds the includes being expanded
// to detect include cycles.
// scopes holds the scopes enclosing the patterns.
func (c *grammarCompiler) expand(path string, patterns []*textmate.Rule, including, scopes []string) ([]chroma.Rule, error) {
	var rules []chroma.Rule
	for i, p := range patterns {
		if p == nil || p.Disabled {
			continue
		}

		where := fmt.Sprintf("%v[%d]", path, i)
		switch {
		case p.Include != "":
			included, err := c.include(where, p.Include, including, scopes)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			rules = append(rules, included...)

		case p.Match != "":
			rule, err := c.matchRule(where, p, scopes)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			rules = append(rules, rule)

		case p.While != "":
			return nil, errtrace.Errorf("%v: begin/while rules are not supported", where)

		case p.Begin != "":
			rule, err := c.blockRule(where, p, scopes)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			rules = append(rules, rule)

		default:
			nested, err := c.expand(where+".patterns", p.Patterns, including, scopes)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			rules = append(rules, nested...)
		}
	}
	return rules, nil
}

func (c *grammarCompiler) include(where, ref string, including, scopes []string) ([]chroma.Rule, error) {
	for _, seen := range including {
		if seen == ref {
			return nil, errtrace.Errorf("%v: include cycle: %v -> %v",
				where, strings.Join(including, " -> "), ref)
		}
	}
	including = append(including, ref)

	switch {
	case ref == "$self" || ref == "$base":
		return c.expand(ref, c.grammar.Patterns, including, scopes)

	case strings.HasPrefix(ref, "#"):
		name := ref[1:]
		r, ok := c.grammar.Repository[name]
		if !ok || r == nil {
			return nil, errtrace.Errorf("%v: include %q: no such repository item", where, ref)
		}
		// A repository item is either a single rule,
		// or a container of patterns.
		return c.expand("repository."+name, []*textmate.Rule{r}, including, scopes)

	default:
		return nil, errtrace.Errorf("%v: include %q: other grammars cannot be included", where, ref)
	}
}

func (c *grammarCompiler) matchRule(where string, r *textmate.Rule, scopes []string) (chroma.Rule, error) {
	emitter, err := c.emitter(where+".match", r.Match, withScope(scopes, r.Name), r.Captures)
	if err != nil {
		return chroma.Rule{}, errtrace.Wrap(err)
	}
	return chroma.Rule{
		Pattern: r.Match,
		Type:    emitter,
		Mutator: loopGuard,
	}, nil
}

func (c *grammarCompiler) blockRule(where string, r *textmate.Rule, scopes []string) (chroma.Rule, error) {
	if r.End == "" {
		return chroma.Rule{}, errtrace.Errorf("%v: begin without end", where)
	}

	// The begin and end matches are in the block's name
	// and its contents are also in its content name.
	outer := withScope(scopes, r.Name)
	inner := withScope(outer, r.ContentName)

	beginCaptures := r.BeginCaptures
	if len(beginCaptures) == 0 {
		beginCaptures = r.Captures
	}
	begin, err := c.emitter(where+".begin", r.Begin, outer, beginCaptures)
	if err != nil {
		return chroma.Rule{}, errtrace.Wrap(err)
	}

	state, ok := c.blocks[r]
	if !ok {
		state = fmt.Sprintf("block%d", len(c.blocks)+1)
		if r.Name != "" {
			state += ":" + r.Name
		}
		c.blocks[r] = state
		c.log.Printf("grammar %v: %v compiles to state %q", c.grammar.ScopeName, where, state)

		endCaptures := r.EndCaptures
		if len(endCaptures) == 0 {
			endCaptures = r.Captures
		}
		end, err := c.emitter(where+".end", r.End, outer, endCaptures)
		if err != nil {
			return chroma.Rule{}, errtrace.Wrap(err)
		}

		// The end pattern is tried before nested patterns.
		rules := []chroma.Rule{{
			Pattern: r.End,
			Type:    end,
			Mutator: chroma.Mutators(loopGuard, chroma.Pop(1)),
		}}

		nested, err := c.expand(where+".patterns", r.Patterns, nil, inner)
		if err != nil {
			return chroma.Rule{}, errtrace.Wrap(err)
		}
		rules = append(rules, nested...)

		content, err := c.types.tokenType(inner)
		if err != nil {
			return chroma.Rule{}, errtrace.Wrap(err)
		}
		rules = append(rules, chroma.Rule{Pattern: _anyChar, Type: content})
		c.rules[state] = rules
	}

	return chroma.Rule{
		Pattern: r.Begin,
		Type:    begin,
		Mutator: chroma.Mutators(loopGuard, chroma.Push(state)),
	}, nil
}

// emitter builds the emitter for a pattern whose matches have the given scopes,
// with the given capture groups tokenized separately.
//
// It also verifies that the pattern compiles.
func (c *grammarCompiler) emitter(where, pattern string, scopes []string, captures textmate.Captures) (chroma.Emitter, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, errtrace.Errorf("%v: %q: %v", where, pattern, err)
	}

	if capture, ok := captures[0]; ok {
		scopes = withScope(scopes, capture.Name)
	}
	whole, err := c.types.tokenType(scopes)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	groups := make(map[int]chroma.TokenType)
	for _, n := range captures.Groups() {
		if n == 0 {
			continue
		}
		if re.GroupNameFromNumber(n) == "" {
			return nil, errtrace.Errorf("%v: %q: no capture group %d", where, pattern, n)
		}
		name := captures[n].Name
		if name == "" {
			continue
		}
		tt, err := c.types.tokenType(withScope(scopes, name))
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		groups[n] = tt
	}

	if len(groups) == 0 {
		return whole, nil
	}
	return &captureEmitter{re: re, whole: whole, groups: groups}, nil
}

// compilePattern compiles a grammar pattern
// the same way Chroma compiles rule patterns.
func compilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(`\G(?m)(?:`+pattern+`)`, 0)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	re.MatchTimeout = _matchTimeout
	return re, nil
}
