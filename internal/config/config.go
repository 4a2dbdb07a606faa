// Package config loads the site configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the name of the configuration file
// used if one isn't specified.
const DefaultFile = "julesite.yaml"

// Site is the configuration of a documentation site.
type Site struct {
	// Source is the directory holding Markdown pages.
	Source string `yaml:"source"`

	// Output is the directory the site is written to.
	// It is replaced entirely on every successful build.
	Output string `yaml:"output"`

	// Theme is the path to the color theme document.
	Theme string `yaml:"theme"`

	// Classes uses CSS classes and a generated stylesheet
	// instead of inline styles for highlighted code.
	Classes bool `yaml:"classes"`

	// Embed generates partial HTML pages
	// suitable for embedding into another site.
	Embed bool `yaml:"embed"`

	// Jobs is the number of pages rendered in parallel.
	Jobs int `yaml:"jobs"`

	// FrontMatter is a text/template
	// rendered at the top of each page.
	FrontMatter string `yaml:"frontmatter"`

	// Languages are custom languages to highlight.
	Languages []*Language `yaml:"languages"`
}

// Language configures a custom language.
type Language struct {
	// ID is the code block tag for this language.
	ID string `yaml:"id"`

	// Name and ScopeName default to those declared by the grammar.
	Name      string `yaml:"name"`
	ScopeName string `yaml:"scopeName"`

	DisplayName string   `yaml:"displayName"`
	Aliases     []string `yaml:"aliases"`

	// Grammar is the path to the grammar document.
	Grammar string `yaml:"grammar"`
}

// Default returns the configuration used when there's no file.
func Default() *Site {
	return &Site{
		Source: "docs",
		Output: "_site",
		Jobs:   runtime.GOMAXPROCS(0),
	}
}

// Load reads the configuration file at path.
//
// Fields not set in the file keep their defaults.
// Environment variables in the file are expanded.
// Relative paths in the file are resolved
// against the directory containing it.
func Load(path string) (*Site, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	site := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(bs)))))
	dec.KnownFields(true)
	if err := dec.Decode(site); err != nil && !errors.Is(err, io.EOF) {
		return nil, errtrace.Wrap(fmt.Errorf("%v: %w", path, err))
	}

	site.resolve(filepath.Dir(path))
	return site, nil
}

func (s *Site) resolve(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}

	resolve(&s.Source)
	resolve(&s.Output)
	resolve(&s.Theme)
	for _, l := range s.Languages {
		if l != nil {
			resolve(&l.Grammar)
		}
	}
}

// Validate reports problems with the configuration.
// All problems are reported together.
func (s *Site) Validate() error {
	var errs []error
	if s.Source == "" {
		errs = append(errs, errors.New("no source directory"))
	}
	if s.Output == "" {
		errs = append(errs, errors.New("no output directory"))
	}
	if s.Theme == "" {
		errs = append(errs, errors.New("no theme"))
	}
	if s.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", s.Jobs))
	}

	seen := make(map[string]struct{})
	for i, l := range s.Languages {
		if l == nil {
			errs = append(errs, fmt.Errorf("languages[%d]: empty", i))
			continue
		}
		if l.ID == "" {
			errs = append(errs, fmt.Errorf("languages[%d]: no id", i))
		} else if _, ok := seen[l.ID]; ok {
			errs = append(errs, fmt.Errorf("languages[%d]: id %q is used more than once", i, l.ID))
		}
		seen[l.ID] = struct{}{}

		if l.Grammar == "" {
			errs = append(errs, fmt.Errorf("languages[%d]: no grammar", i))
		}
	}
	return errtrace.Wrap(errors.Join(errs...))
}
