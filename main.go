// julesite builds a static documentation site from Markdown pages,
// highlighting code blocks with built-in languages
// and with custom languages described by TextMate-style grammars.
//
// See -help for usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	ttemplate "text/template"

	"braces.dev/errtrace"
	"go.abhg.dev/julesite/internal/html"
	"go.abhg.dev/julesite/internal/markdown"
	"go.abhg.dev/julesite/internal/pagefind"
)

func main() {
	cmd := mainCmd{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(cmd.Run(os.Args[1:]))
}

// mainCmd is the actual entry point to the program.
type mainCmd struct {
	Stdout io.Writer // == os.Stdout
	Stderr io.Writer // == os.Stderr

	log *log.Logger
}

func (cmd *mainCmd) Run(args []string) (exitCode int) {
	cmd.log = log.New(cmd.Stderr, "", 0)

	opts, err := (&cliParser{
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}).Parse(args)
	if err != nil {
		// '$cmd -h' should exit with zero.
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// No need to print anything.
		// Parse prints messages.
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, opts); err != nil {
		cmd.log.Printf("julesite: %v", err)
		return 1
	}
	return 0
}

func (cmd *mainCmd) run(ctx context.Context, opts *params) (err error) {
	site, err := opts.Site()
	if err != nil {
		return errtrace.Wrap(err)
	}

	debugOut, closeDebug, err := opts.Debug.Writer(cmd.Stderr)
	if err != nil {
		return errtrace.Wrap(fmt.Errorf("open debug log: %w", err))
	}
	defer func() {
		err = errors.Join(err, closeDebug())
	}()
	debugLog := log.New(debugOut, "", 0)

	var frontmatter *ttemplate.Template
	if len(site.FrontMatter) > 0 {
		frontmatter, err = ttemplate.New("frontmatter").Parse(site.FrontMatter)
		if err != nil {
			return errtrace.Wrap(fmt.Errorf("bad frontmatter template: %w", err))
		}
	}

	highlighter, err := setupHighlighter(ctx, cmd.log, site, debugLog)
	if err != nil {
		return errtrace.Wrap(err)
	}

	gen := Generator{
		Log:       cmd.log,
		Converter: &markdown.Converter{Highlighter: highlighter},
		Renderer: &html.Renderer{
			Embedded:    site.Embed,
			FrontMatter: frontmatter,
			Highlighter: highlighter,
			Search:      opts.Pagefind.Enabled(),
		},
		Jobs: site.Jobs,
	}
	if opts.Pagefind.Enabled() {
		gen.Indexer = &pagefind.CLI{
			Exe: opts.Pagefind.Value(pagefind.DefaultExe),
			Log: debugLog,
		}
	}

	return errtrace.Wrap(gen.Generate(ctx, site.Source, site.Output))
}
