package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"braces.dev/errtrace"
	"go.abhg.dev/julesite/internal/errdefer"
	"go.abhg.dev/julesite/internal/html"
	"go.abhg.dev/julesite/internal/markdown"
	"go.abhg.dev/julesite/internal/pagefind"
	"go.abhg.dev/julesite/internal/pathtree"
	"golang.org/x/sync/errgroup"
)

// Converter converts a Markdown page into an HTML fragment.
type Converter interface {
	Convert(io.Writer, []byte) (*markdown.Document, error)
}

var _ Converter = (*markdown.Converter)(nil)

// Renderer renders converted pages into complete HTML files.
type Renderer interface {
	WriteStatic(string) error
	RenderPage(io.Writer, *html.PageInfo) error
}

var _ Renderer = (*html.Renderer)(nil)

// Indexer builds a search index for a generated site.
type Indexer interface {
	Index(context.Context, pagefind.IndexRequest) error
}

var _ Indexer = (*pagefind.CLI)(nil)

// _searchDir is the directory, relative to the root of the site,
// holding the search index.
var _searchDir = path.Join(html.StaticDir, "pagefind")

// Generator generates a site from a directory of Markdown pages.
//
// In terms of code organization,
// Generator's purpose is to add a separation between main
// and the program's core logic to aid in testability.
type Generator struct {
	Log       *log.Logger
	Converter Converter
	Renderer  Renderer

	// Indexer builds a search index for the site, if set.
	Indexer Indexer

	// Jobs is the maximum number of pages processed at once.
	// Defaults to one.
	Jobs int
}

// page is a single Markdown page of the site.
type page struct {
	// Source is the path to the Markdown file,
	// relative to the source directory.
	// This is always /-separated.
	Source string

	// Key identifies the page in the site hierarchy.
	// Index pages are keyed by their directory.
	Key string

	// Path to the output file relative to the root of the site.
	// This is always /-separated.
	Path string

	Doc  *markdown.Document
	Body []byte
}

// Generate builds the site for srcDir and writes it to outDir.
//
// The site is built in a separate directory next to outDir,
// and replaces outDir only if the whole build succeeds.
// On failure, outDir is left untouched.
func (g *Generator) Generate(ctx context.Context, srcDir, outDir string) (err error) {
	srcAbs, err := filepath.Abs(srcDir)
	if err != nil {
		return errtrace.Wrap(err)
	}
	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return errtrace.Wrap(err)
	}
	// Publishing replaces the output directory.
	if contains(outAbs, srcAbs) {
		return errtrace.Errorf("output directory %v must not contain source directory %v", outDir, srcDir)
	}

	// Previous builds in the source directory are not part of the site.
	var skip string
	if contains(srcAbs, outAbs) {
		skip, err = filepath.Rel(srcAbs, outAbs)
		if err != nil {
			return errtrace.Wrap(err)
		}
	}

	pages, assets, err := findFiles(srcDir, skip)
	if err != nil {
		return errtrace.Wrap(err)
	}
	if len(pages) == 0 {
		return errtrace.Errorf("no pages found in %v", srcDir)
	}

	tree, err := buildTree(pages, assets)
	if err != nil {
		return errtrace.Wrap(err)
	}

	parent := filepath.Dir(filepath.Clean(outDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return errtrace.Wrap(err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(outDir)+"-*")
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.OnError(&err, func() error {
		return os.RemoveAll(staging)
	})
	if err := os.Chmod(staging, 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	// Titles of parent pages are needed for breadcrumbs,
	// so all pages are converted before any is rendered.
	err = g.forEach(ctx, pages, func(p *page) error {
		return g.convert(srcDir, p)
	})
	if err != nil {
		return errtrace.Wrap(err)
	}

	err = g.forEach(ctx, pages, func(p *page) error {
		return g.render(staging, tree, p)
	})
	if err != nil {
		return errtrace.Wrap(err)
	}

	for _, asset := range assets {
		if err := copyFile(filepath.Join(srcDir, filepath.FromSlash(asset)), filepath.Join(staging, filepath.FromSlash(asset))); err != nil {
			return errtrace.Wrap(err)
		}
	}

	if err := g.Renderer.WriteStatic(staging); err != nil {
		return errtrace.Wrap(fmt.Errorf("write static files: %w", err))
	}

	if g.Indexer != nil {
		g.Log.Printf("Building search index")
		err := g.Indexer.Index(ctx, pagefind.IndexRequest{
			SiteDir:      staging,
			OutputSubdir: _searchDir,
		})
		if err != nil {
			return errtrace.Wrap(err)
		}
	}

	if err := publish(staging, outDir); err != nil {
		return errtrace.Wrap(err)
	}
	g.Log.Printf("Wrote %d pages to %v", len(pages), outDir)
	return nil
}

// forEach runs fn for every page with up to g.Jobs at a time.
// The first error stops pages that haven't started yet.
func (g *Generator) forEach(ctx context.Context, pages []*page, fn func(*page) error) error {
	jobs := g.Jobs
	if jobs < 1 {
		jobs = 1
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for _, p := range pages {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errtrace.Wrap(err)
			}
			return fn(p)
		})
	}
	return errtrace.Wrap(eg.Wait())
}

func (g *Generator) convert(srcDir string, p *page) error {
	g.Log.Printf("Rendering page %v", p.Source)

	src, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(p.Source)))
	if err != nil {
		return errtrace.Wrap(err)
	}

	var body bytes.Buffer
	doc, err := g.Converter.Convert(&body, src)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("%v: %w", p.Source, err))
	}

	p.Doc = doc
	p.Body = body.Bytes()
	return nil
}

func (g *Generator) render(outDir string, tree *pathtree.Root[*page], p *page) (err error) {
	outFile := filepath.Join(outDir, filepath.FromSlash(p.Path))
	if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, f)

	info := html.PageInfo{
		Path:        p.Path,
		Title:       p.Doc.Title,
		Meta:        p.Doc.Meta,
		Body:        template.HTML(p.Body),
		Breadcrumbs: breadcrumbs(tree, p),
	}
	if err := g.Renderer.RenderPage(f, &info); err != nil {
		return errtrace.Wrap(fmt.Errorf("%v: render: %w", p.Source, err))
	}
	return nil
}

// breadcrumbs builds a trail from the root of the site to p
// through the index pages of its parent directories.
func breadcrumbs(tree *pathtree.Root[*page], p *page) []html.Breadcrumb {
	trail := tree.Trail(p.Key)
	crumbs := make([]html.Breadcrumb, 0, len(trail)+1)
	for _, e := range trail {
		crumbs = append(crumbs, crumb(e.Value))
	}
	return append(crumbs, crumb(p))
}

func crumb(p *page) html.Breadcrumb {
	text := p.Doc.Title
	if text == "" {
		text = path.Base(p.Key)
		if p.Key == "" {
			text = "Home"
		}
	}
	return html.Breadcrumb{Text: text, Path: p.Path}
}

// buildTree arranges pages by key.
// It fails if two files of the site would be written to the same path.
func buildTree(pages []*page, assets []string) (*pathtree.Root[*page], error) {
	var tree pathtree.Root[*page]
	byPath := make(map[string]*page, len(pages))
	for _, p := range pages {
		if other, ok := tree.Get(p.Key); ok {
			return nil, errtrace.Errorf("pages %v and %v both generate %v", other.Source, p.Source, p.Path)
		}
		tree.Set(p.Key, p)
		byPath[p.Path] = p
	}

	for _, asset := range assets {
		if p, ok := byPath[asset]; ok {
			return nil, errtrace.Errorf("%v conflicts with the page generated from %v", asset, p.Source)
		}
	}
	return &tree, nil
}

// contains reports whether path is dir or inside it.
// Both paths must be absolute and clean.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// findFiles walks srcDir for Markdown pages and other files.
// Files and directories with names starting with "." are skipped,
// as is the directory skip, relative to srcDir, if set.
// Both lists are sorted and /-separated.
func findFiles(srcDir, skip string) (pages []*page, assets []string, err error) {
	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && skip != "" && rel == skip {
			return filepath.SkipDir
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if path.Ext(rel) == ".md" {
			pages = append(pages, newPage(rel))
		} else {
			assets = append(assets, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, errtrace.Wrap(err)
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Source < pages[j].Source
	})
	sort.Strings(assets)
	return pages, assets, nil
}

func newPage(source string) *page {
	dir, base := path.Split(source)
	dir = strings.TrimSuffix(dir, "/")
	name := strings.TrimSuffix(base, path.Ext(base))

	switch strings.ToLower(name) {
	case "index", "readme":
		return &page{
			Source: source,
			Key:    dir,
			Path:   path.Join(dir, "index.html"),
		}
	}

	key := path.Join(dir, name)
	return &page{
		Source: source,
		Key:    key,
		Path:   key + ".html",
	}
}

func copyFile(src, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errtrace.Wrap(err)
	}

	in, err := os.Open(src)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, in)

	out, err := os.Create(dst)
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer errdefer.Close(&err, out)

	_, err = io.Copy(out, in)
	return errtrace.Wrap(err)
}

// publish replaces outDir with the fully built site in staging.
//
// A previous outDir is moved aside first,
// and restored if staging cannot take its place.
func publish(staging, outDir string) (err error) {
	var backup string
	if _, err := os.Stat(outDir); err == nil {
		backup = staging + ".old"
		if err := os.Rename(outDir, backup); err != nil {
			return errtrace.Wrap(fmt.Errorf("move aside %v: %w", outDir, err))
		}
	}

	if err := os.Rename(staging, outDir); err != nil {
		if backup != "" {
			err = errors.Join(err, os.Rename(backup, outDir))
		}
		return errtrace.Wrap(fmt.Errorf("publish %v: %w", outDir, err))
	}

	if backup != "" {
		return errtrace.Wrap(os.RemoveAll(backup))
	}
	return nil
}
