package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"braces.dev/errtrace"
	"github.com/peterbourgon/ff/v3"
	"go.abhg.dev/julesite/internal/config"
	"go.abhg.dev/julesite/internal/flagvalue"
)

// _envPrefix is the prefix for environment variables
// that may be used in place of flags.
const _envPrefix = "JULESITE"

var (
	errHelp             = flag.ErrHelp
	errInvalidArguments = errors.New("invalid arguments")
)

// params holds all arguments for julesite.
type params struct {
	version bool
	help    Help

	Config string
	Debug  flagvalue.Switch

	Source    string
	Output    string
	Theme     string
	Languages []flagvalue.KeyValue

	Classes     bool
	Embed       bool
	FrontMatter string
	Jobs        int
	Pagefind    flagvalue.Switch

	// Names of flags set on the command line or in the environment.
	set map[string]struct{}
}

// isSet reports whether the named flag was set explicitly.
func (p *params) isSet(name string) bool {
	_, ok := p.set[name]
	return ok
}

// cliParser parses the command line arguments for julesite.
type cliParser struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (cmd *cliParser) newFlagSet() (*params, *flag.FlagSet) {
	fset := flag.NewFlagSet("julesite", flag.ContinueOnError)
	fset.SetOutput(cmd.Stderr)
	fset.Usage = func() {
		_ = UsageHelp.Write(cmd.Stderr)
	}

	var p params

	// Site:
	fset.StringVar(&p.Config, "config", "", "")
	fset.StringVar(&p.Source, "src", "", "")
	fset.StringVar(&p.Output, "out", "", "")

	// Highlighting:
	fset.StringVar(&p.Theme, "theme", "", "")
	fset.Var(flagvalue.ListOf(&p.Languages), "lang", "")
	fset.BoolVar(&p.Classes, "classes", false, "")

	// HTML output:
	fset.BoolVar(&p.Embed, "embed", false, "")
	fset.StringVar(&p.FrontMatter, "frontmatter", "", "")
	fset.IntVar(&p.Jobs, "jobs", 0, "")
	fset.Var(&p.Pagefind, "pagefind", "")

	// Program-level:
	fset.Var(&p.Debug, "debug", "")
	fset.BoolVar(&p.version, "version", false, "")
	fset.Var(&p.help, "help", "")
	fset.Var(&p.help, "h", "")

	return &p, fset
}

// Parse parses the command line arguments.
// Flags not on the command line are also read from the environment.
func (cmd *cliParser) Parse(args []string) (*params, error) {
	p, fset := cmd.newFlagSet()
	if err := ff.Parse(fset, args, ff.WithEnvVarPrefix(_envPrefix)); err != nil {
		return nil, errtrace.Wrap(err)
	}
	args = fset.Args()

	p.set = make(map[string]struct{})
	fset.Visit(func(f *flag.Flag) {
		p.set[f.Name] = struct{}{}
	})

	if p.version {
		fmt.Fprintln(cmd.Stdout, "julesite", _version)
		return nil, errHelp
	}

	if p.help == DefaultHelp && len(args) > 0 {
		// The user might have done "-h theme"
		// instead of "-h=theme".
		// If the argument is a known help topic,
		// take it.
		var h Help
		if err := h.Set(args[0]); err == nil {
			if _, ok := _helpTopics[h]; ok {
				p.help = h
				args = args[1:]
			}
		}
	}

	if p.help != NoHelp {
		if err := p.help.Write(cmd.Stderr); err != nil {
			fmt.Fprintln(cmd.Stderr, err)
		}
		return nil, errHelp
	}

	if len(args) > 0 {
		fmt.Fprintf(cmd.Stderr, "Unexpected arguments: %q\n", args)
		_ = UsageHelp.Write(cmd.Stderr)
		return nil, errInvalidArguments
	}

	if p.Jobs < 0 {
		fmt.Fprintf(cmd.Stderr, "-jobs must not be negative, got %d\n", p.Jobs)
		return nil, errInvalidArguments
	}

	return p, nil
}

// Site builds the site configuration from these parameters.
//
// The configuration file named by -config is loaded if set.
// Otherwise, julesite.yaml in the current directory is used if it exists.
// Flags that were set explicitly override values from the file.
func (p *params) Site() (*config.Site, error) {
	site, err := p.loadSite()
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	if p.isSet("src") {
		site.Source = p.Source
	}
	if p.isSet("out") {
		site.Output = p.Output
	}
	if p.isSet("theme") {
		site.Theme = p.Theme
	}
	if p.isSet("classes") {
		site.Classes = p.Classes
	}
	if p.isSet("embed") {
		site.Embed = p.Embed
	}
	if p.isSet("frontmatter") {
		site.FrontMatter = p.FrontMatter
	}
	if p.isSet("jobs") && p.Jobs > 0 {
		site.Jobs = p.Jobs
	}
	for _, kv := range p.Languages {
		site.Languages = append(site.Languages, &config.Language{
			ID:      kv.Key,
			Grammar: kv.Value,
		})
	}

	if err := site.Validate(); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("bad configuration: %w", err))
	}
	if site.Embed && p.Pagefind.Enabled() {
		return nil, errtrace.New("-pagefind cannot be used with embedded pages")
	}
	// Embedded pages come without a style sheet to hold the classes.
	if site.Embed && site.Classes {
		return nil, errtrace.New("-classes cannot be used with embedded pages")
	}
	return site, nil
}

func (p *params) loadSite() (*config.Site, error) {
	if p.Config != "" {
		return errtrace.Wrap2(config.Load(p.Config))
	}

	if _, err := os.Stat(config.DefaultFile); err == nil {
		return errtrace.Wrap2(config.Load(config.DefaultFile))
	}
	return config.Default(), nil
}
