// Package markdown converts Markdown pages into HTML,
// handing fenced code blocks to a syntax highlighter.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"braces.dev/errtrace"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// CodeRenderer renders a block of source code into HTML.
//
// lang is the info string tag of the code block.
// It is empty for code blocks without one.
type CodeRenderer interface {
	Render(src, lang string) (string, error)
}

// Converter converts Markdown documents into HTML.
//
// A Converter is safe for concurrent use
// if its CodeRenderer is.
type Converter struct {
	// Highlighter renders code blocks.
	Highlighter CodeRenderer
}

// Document holds information about a converted Markdown document.
type Document struct {
	// Title of the document.
	//
	// This is the "title" field of the front matter if present,
	// or the text of the first level 1 heading.
	// It is empty if neither is present.
	Title string

	// Meta holds the decoded front matter.
	// It is empty, not nil, if the document has no front matter.
	Meta map[string]any
}

// Convert converts a Markdown document to HTML and writes it to w.
//
// Front matter at the top of the document is not rendered.
// Every code block is rendered with the Converter's Highlighter,
// and the first failure aborts the conversion.
func (c *Converter) Convert(w io.Writer, src []byte) (*Document, error) {
	fm, body, _, err := SplitFrontMatter(src)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	meta, err := parseFrontMatter(fm)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	// Line numbers reported for code blocks
	// are relative to the full document.
	lineOffset := bytes.Count(src[:len(src)-len(body)], []byte("\n"))

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&codeBlockRenderer{
					code:       c.Highlighter,
					lineOffset: lineOffset,
				}, 100),
			),
		),
	)

	root := md.Parser().Parse(text.NewReader(body))

	doc := Document{Meta: meta}
	if title, ok := meta["title"].(string); ok {
		doc.Title = title
	} else {
		doc.Title = firstHeading(root, body)
	}

	if err := md.Renderer().Render(w, body, root); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &doc, nil
}

// firstHeading returns the plain text of the first level 1 heading.
func firstHeading(root ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level == 1 {
			title = plainText(h, source)
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return title
}

func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			sb.Write(n.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// codeBlockRenderer renders fenced and indented code blocks
// with a CodeRenderer in place of goldmark's default.
type codeBlockRenderer struct {
	code       CodeRenderer
	lineOffset int
}

var _ renderer.NodeRenderer = (*codeBlockRenderer)(nil)

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)
	return r.render(w, source, n, string(n.Language(source)))
}

func (r *codeBlockRenderer) renderCodeBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool,
) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	return r.render(w, source, node, "")
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, n ast.Node, lang string) (ast.WalkStatus, error) {
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	out, err := r.code.Render(code.String(), lang)
	if err != nil {
		return ast.WalkStop, errtrace.Wrap(fmt.Errorf("code block at line %d: %w", r.line(source, n), err))
	}

	_, _ = w.WriteString(out)
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

// line reports the 1-indexed line in the full document
// where a code block starts.
func (r *codeBlockRenderer) line(source []byte, n ast.Node) int {
	pos := 0
	if lines := n.Lines(); lines.Len() > 0 {
		pos = lines.At(0).Start
		// Fenced blocks start one line above their first line of code.
		if _, ok := n.(*ast.FencedCodeBlock); ok {
			pos = bytes.LastIndexByte(source[:pos], '\n')
			if pos < 0 {
				pos = 0
			}
		}
	} else if fcb, ok := n.(*ast.FencedCodeBlock); ok && fcb.Info != nil {
		pos = fcb.Info.Segment.Start
	}
	return r.lineOffset + bytes.Count(source[:pos], []byte("\n")) + 1
}
