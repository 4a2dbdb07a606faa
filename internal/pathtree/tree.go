// Package pathtree stores values in a tree
// keyed by /-separated paths.
//
// The site generator keeps one entry per page:
// directories are keyed by their path
// and take the value of their index page, if any.
//
//	t.Set("", home)
//	t.Set("guide", guideIndex)
//	t.Set("guide/variables", variables)
//
//	t.Trail("guide/variables") // == [home, guideIndex]
package pathtree

import "strings"

const _sep = '/'

// Root is the starting point of the path tree.
// The zero-value of Root is an empty tree.
type Root[T any] struct {
	root node[T]
}

// Entry is a value in the tree with its path.
type Entry[T any] struct {
	Path  string
	Value T
}

// Set adds a value to the tree under the given path.
// The empty path refers to the root of the tree.
// If this path already had a value, it is overwritten.
func (r *Root[T]) Set(p string, v T) {
	r.root.set(p, &v)
}

// Get retrieves the value set for exactly this path.
func (r *Root[T]) Get(p string) (v T, ok bool) {
	n := r.root.find(p)
	if n == nil || n.value == nil {
		return v, false
	}
	return *n.value, true
}

// Trail returns the values set for the ancestors of p,
// starting at the root.
// Ancestors that don't have a value are skipped.
// The value of p itself is not included.
func (r *Root[T]) Trail(p string) []Entry[T] {
	var (
		trail []Entry[T]
		path  []string
	)
	n := &r.root
	for p != "" && n != nil {
		if n.value != nil {
			trail = append(trail, Entry[T]{
				Path:  strings.Join(path, string(_sep)),
				Value: *n.value,
			})
		}

		var head string
		head, p = split(p)
		path = append(path, head)
		n = n.children[head]
	}
	return trail
}

type node[T any] struct {
	value    *T
	children map[string]*node[T]
}

func (n *node[T]) set(p string, v *T) {
	if len(p) == 0 {
		n.value = v
		return
	}

	head, tail := split(p)
	if n.children == nil {
		n.children = make(map[string]*node[T])
	}
	c, ok := n.children[head]
	if !ok {
		c = new(node[T])
		n.children[head] = c
	}
	c.set(tail, v)
}

func (n *node[T]) find(p string) *node[T] {
	for p != "" && n != nil {
		var head string
		head, p = split(p)
		n = n.children[head]
	}
	return n
}

func split(p string) (head, tail string) {
	head, tail = p, ""
	if idx := strings.IndexByte(p, _sep); idx >= 0 {
		head, tail = p[:idx], p[idx+1:]
	}
	// Collapse repeated separators.
	for len(tail) > 0 && tail[0] == _sep {
		tail = tail[1:]
	}
	return head, tail
}
