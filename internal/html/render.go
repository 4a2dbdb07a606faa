// Package html renders the pages of the site.
package html

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	ttemplate "text/template"

	"braces.dev/errtrace"
	"go.abhg.dev/julesite/internal/relative"
)

// StaticDir is the directory, relative to the root of the site,
// holding static assets.
const StaticDir = "_"

var (
	//go:embed tmpl/*.html
	_tmplFS embed.FS

	//go:embed static/**
	_staticFS embed.FS

	// Functions are bound at render time.
	// Parsing with unusable references up front
	// still verifies the templates at init.
	_pageTmpl = template.Must(
		template.New("page.html").
			Funcs((*render)(nil).FuncMap()).
			ParseFS(_tmplFS, "tmpl/page.html", "tmpl/layout.html"),
	)
)

// CSSWriter writes the style sheet for highlighted code.
type CSSWriter interface {
	WriteCSS(io.Writer) error
}

// Renderer renders pages into HTML.
type Renderer struct {
	// Whether we're in embedded mode.
	// In this mode, output only contains the page body
	// and will not generate complete, stylized HTML pages.
	Embedded bool

	// FrontMatter to include at the top of each file, if any.
	FrontMatter *ttemplate.Template

	// Highlighter provides the style sheet for code blocks.
	// If nil, no highlighting styles are written.
	Highlighter CSSWriter

	// Search adds a search box backed by a pagefind index
	// stored under StaticDir.
	Search bool
}

func (r *Renderer) templateName() string {
	if r.Embedded {
		return "Body"
	}
	return "Page"
}

// WriteStatic dumps the contents of static/ into the given directory.
//
// This is a no-op if the renderer is running in embedded mode.
func (r *Renderer) WriteStatic(dir string) error {
	if r.Embedded {
		return nil
	}

	dir = filepath.Join(dir, StaticDir)
	static, err := fs.Sub(_staticFS, "static")
	if err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == "." {
			return err
		}

		outPath := filepath.Join(dir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		bs, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}

		// Code styles go at the end of the main style sheet.
		if path == "css/main.css" && r.Highlighter != nil {
			buff := bytes.NewBuffer(bs)
			buff.WriteString("\n")
			if err := r.Highlighter.WriteCSS(buff); err != nil {
				return err
			}
			bs = buff.Bytes()
		}

		return os.WriteFile(outPath, bs, 0o644)
	}))
}

// Breadcrumb holds information about parents of a page
// so that we can leave a trail up for navigation.
type Breadcrumb struct {
	// Text for the crumb.
	Text string

	// Path to the crumb from the root of the output.
	Path string
}

// PageInfo specifies the page that should be rendered.
type PageInfo struct {
	// Path to the page's output file from the root of the site.
	// This is always /-separated.
	Path string

	// Title of the page, if any.
	Title string

	// Meta is the page's front matter.
	Meta map[string]any

	// Body is the page's content.
	Body template.HTML

	Breadcrumbs []Breadcrumb
}

// Basename is the name of the page's file without its extension.
func (p *PageInfo) Basename() string {
	base := path.Base(p.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// HeadTitle is the text for the page's <title>.
func (p *PageInfo) HeadTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Basename()
}

// ID is an identifier for the page's content.
func (p *PageInfo) ID() string {
	return "page-" + strings.ReplaceAll(strings.TrimSuffix(p.Path, path.Ext(p.Path)), "/", "-")
}

type frontmatterData struct {
	Path     string
	Basename string
	Title    string
	Meta     map[string]any
}

func (r *Renderer) renderFrontmatter(w io.Writer, d frontmatterData) error {
	if r.FrontMatter == nil {
		return nil
	}

	var buff bytes.Buffer
	if err := r.FrontMatter.Execute(&buff, d); err != nil {
		return errtrace.Wrap(err)
	}

	bs := bytes.TrimSpace(buff.Bytes())
	if len(bs) == 0 {
		return nil
	}
	bs = append(bs, '\n', '\n')

	_, err := w.Write(bs)
	return errtrace.Wrap(err)
}

// RenderPage renders a single page.
func (r *Renderer) RenderPage(w io.Writer, info *PageInfo) error {
	err := r.renderFrontmatter(w, frontmatterData{
		Path:     info.Path,
		Basename: info.Basename(),
		Title:    info.Title,
		Meta:     info.Meta,
	})
	if err != nil {
		return errtrace.Wrap(err)
	}

	render := render{Path: info.Path, Search: r.Search}
	return errtrace.Wrap(template.Must(_pageTmpl.Clone()).
		Funcs(render.FuncMap()).
		ExecuteTemplate(w, r.templateName(), info))
}

type render struct {
	// Path to the page being rendered.
	Path string

	Search bool
}

func (r *render) FuncMap() template.FuncMap {
	return template.FuncMap{
		"static":       r.static,
		"relativePath": r.relativePath,
		"search":       r.search,
	}
}

func (r *render) search() bool {
	return r.Search
}

func (r *render) relativePath(p string) string {
	return relative.FromPage(r.Path, p)
}

func (r *render) static(p string) string {
	return r.relativePath(path.Join(StaticDir, p))
}
