package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"
)

// ErrUnclosedFrontMatter indicates that a page opened a front matter block
// but never closed it.
var ErrUnclosedFrontMatter = errors.New("front matter has no closing delimiter")

// SplitFrontMatter separates YAML front matter ('---' delimited)
// from the Markdown body.
//
// If the document does not start with a front matter delimiter,
// ok is false and body is the full input.
func SplitFrontMatter(content []byte) (frontMatter, body []byte, ok bool, err error) {
	nl := "\n"
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = "\r\n"
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]

	// Empty front matter.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if string(rest) == "---" {
		return []byte{}, nil, true, nil
	}

	closing := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closing); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
	}

	// The closing delimiter may end the file.
	if end, ok := bytes.CutSuffix(rest, []byte(nl+"---")); ok {
		return end, nil, true, nil
	}
	return nil, nil, false, errtrace.Wrap(ErrUnclosedFrontMatter)
}

// parseFrontMatter decodes YAML front matter into a map.
func parseFrontMatter(src []byte) (map[string]any, error) {
	meta := make(map[string]any)
	if len(bytes.TrimSpace(src)) == 0 {
		return meta, nil
	}

	if err := yaml.Unmarshal(src, &meta); err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("front matter: %w", err))
	}
	if meta == nil {
		meta = make(map[string]any)
	}
	return meta, nil
}
