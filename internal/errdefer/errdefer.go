// Package errdefer provides functions for running operations
// that must be deferred until the end of a function,
// but which may return errors that should be returned from the function.
//
// Use these inside defer statements with a named error return.
package errdefer

import (
	"errors"
	"io"
)

// Close calls Close on the given Closer,
// and joins any error returned with the given error.
func Close(err *error, closer io.Closer) {
	*err = errors.Join(*err, closer.Close())
}

// OnError calls fn only if the function is returning an error,
// and joins any error returned by fn with it.
//
// This is useful to roll back partial work.
func OnError(err *error, fn func() error) {
	if *err == nil {
		return
	}
	if ferr := fn(); ferr != nil {
		*err = errors.Join(*err, ferr)
	}
}
