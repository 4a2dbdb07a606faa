// Package textmate loads TextMate-style grammar documents
// and VS Code-style color theme documents from disk.
//
// Both kinds of document are YAML.
// JSON documents are accepted as well since JSON is a subset of YAML.
//
// Documents are decoded into plain Go values and are otherwise not
// interpreted here: compiling a grammar into a tokenizer
// and a theme into a style is the job of package highlight.
package textmate
