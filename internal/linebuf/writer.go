// Package linebuf provides line-buffered IO utilities.
package linebuf

import (
	"bytes"
	"io"
	"sync"
)

// Writer is an io.Writer that splits its input on newlines,
// calling a function for each complete line.
//
// Writer is safe for concurrent use.
type Writer struct {
	fn func(line string)

	mu   sync.Mutex
	buff bytes.Buffer // partial line from a prior write
}

var _ io.Writer = (*Writer)(nil)

// NewWriter builds a Writer that calls fn
// with each line written to it, without the trailing newline.
func NewWriter(fn func(line string)) *Writer {
	return &Writer{fn: fn}
}

// Write splits bs into lines.
// A trailing partial line is held until the next Write or Flush.
func (w *Writer) Write(bs []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(bs)
	for {
		line, rest, ok := bytes.Cut(bs, []byte{'\n'})
		if !ok {
			w.buff.Write(line)
			break
		}
		bs = rest

		if w.buff.Len() == 0 {
			w.fn(string(line))
			continue
		}

		w.buff.Write(line)
		w.fn(w.buff.String())
		w.buff.Reset()
	}
	return total, nil
}

// Flush sends any buffered partial line to the function.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buff.Len() > 0 {
		w.fn(w.buff.String())
		w.buff.Reset()
	}
}
