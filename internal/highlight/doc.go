// Package highlight renders source code into syntax-highlighted HTML.
// It uses the Chroma library to do this work.
//
// Languages that Chroma does not know about are described by
// TextMate-style grammars (see package textmate),
// which are compiled into Chroma lexers when registered.
// Colors come from a VS Code-style theme.
//
// Use of a highlighter is split into two phases.
// During setup, [New] prepares the theme
// and [Setup.Register] adds custom languages.
// [Setup.Finish] ends setup and returns a [Highlighter],
// which renders code blocks and is safe for concurrent use.
package highlight
