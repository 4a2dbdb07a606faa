// Package pagefind runs the pagefind CLI
// to build a search index for a generated site.
package pagefind

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"

	"braces.dev/errtrace"
	"go.abhg.dev/julesite/internal/linebuf"
)

// DefaultExe is the name of the pagefind executable
// looked up on $PATH when CLI.Exe is unset.
const DefaultExe = "pagefind"

// CLI is a handle to the pagefind executable.
type CLI struct {
	// Exe is the path to the pagefind executable.
	// Defaults to DefaultExe.
	Exe string

	// Log receives the output of pagefind, one line at a time.
	// Defaults to discarding it.
	Log *log.Logger
}

// IndexRequest is a request to index a site.
type IndexRequest struct {
	// SiteDir is the directory holding the generated site.
	SiteDir string // required

	// OutputSubdir is the directory, relative to SiteDir,
	// where pagefind writes its index and assets.
	OutputSubdir string

	// Glob selects the files to index, relative to SiteDir.
	Glob string
}

func (r *IndexRequest) args() []string {
	args := []string{"--site", r.SiteDir, "--verbose"}
	if r.OutputSubdir != "" {
		args = append(args, "--output-subdir", r.OutputSubdir)
	}
	if r.Glob != "" {
		args = append(args, "--glob", r.Glob)
	}
	return args
}

// Index builds a search index for the site in req.SiteDir.
func (c *CLI) Index(ctx context.Context, req IndexRequest) error {
	if req.SiteDir == "" {
		return errtrace.New("pagefind: no site directory")
	}

	logger := c.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	exe := c.Exe
	if exe == "" {
		exe = DefaultExe
	}

	out := linebuf.NewWriter(func(line string) {
		logger.Printf("pagefind: %s", line)
	})
	defer out.Flush()

	cmd := exec.CommandContext(ctx, exe, req.args()...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return errtrace.Wrap(fmt.Errorf("pagefind: %w", err))
	}
	return nil
}
