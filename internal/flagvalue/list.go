// Package flagvalue provides flag.Value implementations.
package flagvalue

import (
	"flag"
	"fmt"
	"strings"

	"braces.dev/errtrace"
)

// _listSep separates values of a List in a single argument.
const _listSep = ";"

// Getter is a constraint satisfied by pointers to types
// which implement flag.Getter.
type Getter[T any] interface {
	*T
	flag.Getter
}

// List is a flag.Getter that accepts a flag any number of times
// and collects the values into a slice.
//
// A single argument may hold several values separated by ";".
// This matches the output of String,
// and lets one environment variable carry a whole list.
type List[T any, PT Getter[T]] []T

// ListOf wraps a slice so that it can be used as a repeated flag.
//
//	flag.Var(flagvalue.ListOf(&items), "item", ...)
func ListOf[T any, PT Getter[T]](vs *[]T) *List[T, PT] {
	return (*List[T, PT])(vs)
}

// Get returns the collected values as a []T.
func (lv *List[T, PT]) Get() any { return []T(*lv) }

// String returns the values joined by "; ".
func (lv *List[T, PT]) String() string {
	parts := make([]string, len(*lv))
	for i, v := range *lv {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, _listSep+" ")
}

// Set receives a flag argument holding one or more values.
// Empty values are ignored.
func (lv *List[T, PT]) Set(s string) error {
	for part := range strings.SplitSeq(s, _listSep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var v T
		if err := PT(&v).Set(part); err != nil {
			return errtrace.Wrap(err)
		}
		*lv = append(*lv, v)
	}
	return nil
}
