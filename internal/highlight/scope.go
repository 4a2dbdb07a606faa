package highlight

import (
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
)

// _scopeTypes maps TextMate scope prefixes to Chroma token types.
//
// Scopes are matched by their longest dot-separated prefix in this table,
// so "keyword.control.conditional.jule" uses the entry for "keyword.control".
// Where several scopes map to one token type,
// Chroma's built-in lexers are styled like the first of them.
var _scopeTypes = []struct {
	scope string
	tt    chroma.TokenType
}{
	{"comment", chroma.Comment},
	{"comment.line", chroma.CommentSingle},
	{"comment.block", chroma.CommentMultiline},
	{"comment.block.documentation", chroma.CommentSpecial},
	{"meta.preprocessor", chroma.CommentPreproc},

	{"keyword", chroma.Keyword},
	{"keyword.control", chroma.KeywordReserved},
	{"keyword.other", chroma.KeywordPseudo},
	{"keyword.operator", chroma.Operator},
	{"keyword.operator.word", chroma.OperatorWord},
	{"keyword.operator.new", chroma.OperatorWord},
	{"storage", chroma.KeywordDeclaration},
	{"storage.type", chroma.KeywordType},
	{"storage.modifier", chroma.KeywordNamespace},

	{"string", chroma.String},
	{"string.quoted.single", chroma.StringSingle},
	{"string.quoted.double", chroma.StringDouble},
	{"string.quoted.triple", chroma.StringHeredoc},
	{"string.quoted.raw", chroma.StringBacktick},
	{"string.interpolated", chroma.StringInterpol},
	{"string.regexp", chroma.StringRegex},
	{"string.other", chroma.StringOther},

	{"constant", chroma.NameConstant},
	{"constant.numeric", chroma.Number},
	{"constant.numeric.integer", chroma.NumberInteger},
	{"constant.numeric.float", chroma.NumberFloat},
	{"constant.numeric.decimal", chroma.NumberFloat},
	{"constant.numeric.hex", chroma.NumberHex},
	{"constant.numeric.octal", chroma.NumberOct},
	{"constant.numeric.binary", chroma.NumberBin},
	{"constant.character", chroma.StringChar},
	{"constant.character.escape", chroma.StringEscape},
	{"constant.language", chroma.KeywordConstant},
	{"constant.other", chroma.NameConstant},

	{"entity.name", chroma.NameOther},
	{"entity.name.function", chroma.NameFunction},
	{"entity.name.function.decorator", chroma.NameDecorator},
	{"entity.name.type", chroma.NameClass},
	{"entity.name.class", chroma.NameClass},
	{"entity.name.namespace", chroma.NameNamespace},
	{"entity.name.tag", chroma.NameTag},
	{"entity.name.label", chroma.NameLabel},
	{"entity.other.attribute-name", chroma.NameAttribute},
	{"entity.other.inherited-class", chroma.NameClass},

	{"variable", chroma.NameVariable},
	{"variable.parameter", chroma.NameVariableInstance},
	{"variable.language", chroma.NameBuiltinPseudo},
	{"variable.other.constant", chroma.NameConstant},
	{"variable.other.property", chroma.NameProperty},
	{"variable.other.member", chroma.NameProperty},
	{"support.function", chroma.NameBuiltin},
	{"support.function.builtin", chroma.NameBuiltin},
	{"support.type", chroma.KeywordType},
	{"support.class", chroma.NameClass},
	{"support.constant", chroma.NameConstant},
	{"support.variable", chroma.NameVariableGlobal},

	{"punctuation", chroma.Punctuation},

	{"invalid", chroma.Error},

	{"markup.heading", chroma.GenericHeading},
	{"markup.bold", chroma.GenericStrong},
	{"markup.italic", chroma.GenericEmph},
	{"markup.underline", chroma.GenericUnderline},
	{"markup.inserted", chroma.GenericInserted},
	{"markup.deleted", chroma.GenericDeleted},
	{"markup.raw", chroma.StringBacktick},
}

var _scopeTypeIndex = func() map[string]chroma.TokenType {
	m := make(map[string]chroma.TokenType, len(_scopeTypes))
	for _, st := range _scopeTypes {
		m[st.scope] = st.tt
	}
	return m
}()

// ScopeType reports the Chroma token type for a TextMate scope.
//
// The scope may be a space-separated list of scopes,
// or a descendant selector like "source.jule keyword".
// The innermost scope with a known type wins.
func ScopeType(scope string) (chroma.TokenType, bool) {
	return stackType(strings.Fields(scope))
}

// stackType is ScopeType for a list of scopes, outermost first.
func stackType(scopes []string) (chroma.TokenType, bool) {
	for i := len(scopes) - 1; i >= 0; i-- {
		s := scopes[i]
		for {
			if tt, ok := _scopeTypeIndex[s]; ok {
				return tt, true
			}
			idx := strings.LastIndexByte(s, '.')
			if idx < 0 {
				break
			}
			s = s[:idx]
		}
	}
	return 0, false
}

// withScope returns a copy of scopes with the given scope added innermost.
// The scope may be a space-separated list of scopes.
func withScope(scopes []string, scope string) []string {
	names := strings.Fields(scope)
	if len(names) == 0 {
		return scopes
	}
	out := make([]string, 0, len(scopes)+len(names))
	out = append(out, scopes...)
	return append(out, names...)
}
