package highlight

import "errors"

var (
	// ErrEngineInit indicates that a theme could not be applied.
	ErrEngineInit = errors.New("cannot initialize highlighter")

	// ErrDuplicateLanguage indicates that a language id or alias
	// was registered twice.
	ErrDuplicateLanguage = errors.New("language already registered")

	// ErrInvalidGrammar indicates that a grammar could not be compiled.
	ErrInvalidGrammar = errors.New("invalid grammar")

	// ErrScopeMismatch indicates that a language's scope name
	// does not match the root scope of its grammar.
	ErrScopeMismatch = errors.New("scope name mismatch")

	// ErrFrozen indicates an attempt to register a language
	// after setup finished.
	ErrFrozen = errors.New("highlighter setup already finished")

	// ErrRender indicates that a code block could not be tokenized.
	ErrRender = errors.New("cannot render code block")
)
