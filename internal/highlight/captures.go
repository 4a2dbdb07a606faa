package highlight

import (
	"sort"
	"unicode/utf8"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/dlclark/regexp2"
)

// captureEmitter emits a token per capture group of a match.
//
// Chroma only hands emitters the text of each group,
// not where they are,
// so the emitter matches the rule's pattern again
// at the same position to find group offsets.
// Text of the match outside all captured groups
// gets the whole-match token type.
type captureEmitter struct {
	re     *regexp2.Regexp
	whole  chroma.TokenType
	groups map[int]chroma.TokenType
}

var _ chroma.Emitter = (*captureEmitter)(nil)

func (e *captureEmitter) Emit(groups []string, state *chroma.LexerState) chroma.Iterator {
	text := groups[0]
	length := utf8.RuneCountInString(text)
	start := state.Pos - length

	m, err := e.re.FindRunesMatchStartingAt(state.Text, start)
	if err != nil || m == nil || m.Index != start || m.Length != length {
		return chroma.Literator(chroma.Token{Type: e.whole, Value: text})
	}

	type span struct {
		start, end int
		typ        chroma.TokenType
	}
	spans := make([]span, 0, len(e.groups))
	for n, typ := range e.groups {
		g := m.GroupByNumber(n)
		if g == nil || len(g.Captures) == 0 || g.Length == 0 {
			continue
		}
		spans = append(spans, span{start: g.Index, end: g.Index + g.Length, typ: typ})
	}
	// Outer groups before the groups nested inside them.
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var tokens []chroma.Token
	emit := func(typ chroma.TokenType, from, to int) {
		if from < to {
			tokens = append(tokens, chroma.Token{
				Type:  typ,
				Value: string(state.Text[from:to]),
			})
		}
	}

	pos := start
	for _, s := range spans {
		if s.start < pos {
			continue // nested in or overlapping an emitted group
		}
		emit(e.whole, pos, s.start)
		emit(s.typ, s.start, s.end)
		pos = s.end
	}
	emit(e.whole, pos, start+length)
	return chroma.Literator(tokens...)
}

type loopGuardKey struct{}

type loopGuardState struct {
	pos    int
	states map[string]struct{}
}

// loopGuard fails tokenization if rules keep matching empty text
// at the same position in the same state.
// Without it, such a grammar tokenizes forever.
var loopGuard = chroma.MutatorFunc(func(s *chroma.LexerState) error {
	if len(s.Groups) > 0 && s.Groups[0] != "" {
		return nil
	}

	g, _ := s.Get(loopGuardKey{}).(*loopGuardState)
	if g == nil || g.pos != s.Pos {
		g = &loopGuardState{pos: s.Pos, states: make(map[string]struct{})}
		s.Set(loopGuardKey{}, g)
	}

	if _, seen := g.states[s.State]; seen {
		return errtrace.Errorf("state %q: rule %d keeps matching empty text at offset %d", s.State, s.Rule, s.Pos)
	}
	g.states[s.State] = struct{}{}
	return nil
})
