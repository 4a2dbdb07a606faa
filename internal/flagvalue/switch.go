package flagvalue

import (
	"flag"
	"io"
	"os"

	"braces.dev/errtrace"
)

// _bare is the value of a Switch passed without an argument.
const _bare = "-"

// Switch is a flag that may be passed bare ("-debug")
// or with an argument ("-debug=build.log").
type Switch string

var _ flag.Getter = (*Switch)(nil)

// Get returns the argument of the switch,
// "-" if it was passed bare,
// or an empty string if it wasn't passed.
func (s *Switch) Get() any { return string(*s) }

// String returns the same value as Get.
func (s *Switch) String() string { return string(*s) }

// IsBoolFlag allows the switch to be passed without an argument.
func (*Switch) IsBoolFlag() bool { return true }

// Set receives the value for this flag.
// "true" turns the switch on without an argument,
// and "false" turns it off.
func (s *Switch) Set(v string) error {
	switch v {
	case "true":
		v = _bare
	case "false":
		v = ""
	}
	*s = Switch(v)
	return nil
}

// Enabled reports whether the switch was turned on.
func (s Switch) Enabled() bool { return s != "" }

// Value returns the argument of the switch,
// or fallback if it was passed bare or not at all.
func (s Switch) Value(fallback string) string {
	if s == "" || s == _bare {
		return fallback
	}
	return string(s)
}

// Writer opens the destination for this switch:
//
//   - if the switch is off, output is discarded
//   - if it was passed bare, output goes to fallback
//   - otherwise output goes to a file named by the argument
//
// The returned function must be called when the writer is no longer needed.
func (s Switch) Writer(fallback io.Writer) (io.Writer, func() error, error) {
	switch s {
	case "":
		return io.Discard, nopClose, nil
	case _bare:
		return fallback, nopClose, nil
	}

	f, err := os.Create(string(s))
	if err != nil {
		return nil, nil, errtrace.Wrap(err)
	}
	return f, f.Close, nil
}

func nopClose() error { return nil }
