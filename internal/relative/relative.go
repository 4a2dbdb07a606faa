// Package relative builds relative links between pages of the site.
package relative

import (
	"path"
	"strings"
)

// Path returns a /-separated path to dst, relative to the directory src.
// Both paths must be relative to the root of the site.
//
// Path works on strings alone, so it doesn't fail.
func Path(src, dst string) string {
	// src is a directory: a trailing slash means nothing.
	srcParts := split(strings.TrimSuffix(src, "/"))
	dstParts := split(dst)

	common := 0
	for common < len(srcParts) && common < len(dstParts) && srcParts[common] == dstParts[common] {
		common++
	}

	parts := make([]string, 0, len(srcParts)-common+len(dstParts)-common)
	for range srcParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, dstParts[common:]...)
	return strings.Join(parts, "/")
}

// FromPage returns a path to dst relative to the page at pagePath.
// Both paths are relative to the root of the site.
//
// An empty result means dst is the directory holding the page;
// FromPage returns "." instead.
func FromPage(pagePath, dst string) string {
	dir := path.Dir(pagePath)
	if dir == "." {
		dir = ""
	}
	if p := Path(dir, dst); p != "" {
		return p
	}
	return "."
}

func split(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
